package vector

import "context"

// Metadata is attached to every indexed record and returned with every
// match. Text carries a copy of the message content for prompt
// injection; the durable message row stays authoritative.
type Metadata struct {
	OwnerID        string
	ConversationID string
	Text           string
}

// Record is a memory record keyed by the message it was derived from.
type Record struct {
	MessageID string
	Embedding []float32
	Metadata  Metadata
}

// Match is a ranked query result, highest similarity first.
type Match struct {
	MessageID string
	Metadata  Metadata
	Score     float32
}

// Index defines the contract for vector-memory backends.
type Index interface {
	// Upsert stores a record under its message id.
	Upsert(ctx context.Context, rec Record) error

	// Query returns up to k matches for the embedding, restricted to the
	// given owner. Implementations must never return another owner's
	// records.
	Query(ctx context.Context, embedding []float32, k int, ownerID string) ([]Match, error)

	// PurgeConversation removes all records of a conversation. Best-effort:
	// the durable store is the source of truth for deletion.
	PurgeConversation(ctx context.Context, ownerID, conversationID string) error

	// Close releases resources.
	Close() error
}
