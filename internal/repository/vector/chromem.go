package vector

import (
	"context"
	"fmt"
	"sync"

	"chatnex/internal/logger"

	chromem "github.com/philippgille/chromem-go"
	"github.com/sirupsen/logrus"
)

// Ensure ChromemIndex implements the Index interface
var _ Index = (*ChromemIndex)(nil)

// ChromemIndex wraps chromem-go, a pure Go embedded vector database.
// Each owner gets a dedicated collection, so cross-user leakage is ruled
// out structurally in addition to the metadata filter applied on query.
type ChromemIndex struct {
	db          *chromem.DB
	collections map[string]*chromem.Collection
	mu          sync.RWMutex
}

// NewChromemIndex creates a new in-process chromem-backed index.
func NewChromemIndex() *ChromemIndex {
	return &ChromemIndex{
		db:          chromem.NewDB(),
		collections: make(map[string]*chromem.Collection),
	}
}

// getOrCreateCollection returns the collection for an owner.
func (x *ChromemIndex) getOrCreateCollection(ownerID string) (*chromem.Collection, error) {
	x.mu.RLock()
	col, exists := x.collections[ownerID]
	x.mu.RUnlock()
	if exists {
		return col, nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if col, exists := x.collections[ownerID]; exists {
		return col, nil
	}

	col, err := x.db.CreateCollection(
		fmt.Sprintf("owner_%s", ownerID),
		nil, // no collection metadata
		nil, // embeddings are provided, no embedding func
	)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	x.collections[ownerID] = col
	return col, nil
}

// Upsert stores a record under its message id.
func (x *ChromemIndex) Upsert(ctx context.Context, rec Record) error {
	col, err := x.getOrCreateCollection(rec.Metadata.OwnerID)
	if err != nil {
		return err
	}

	doc := chromem.Document{
		ID:        rec.MessageID,
		Content:   rec.Metadata.Text,
		Embedding: rec.Embedding,
		Metadata: map[string]string{
			"owner_id":        rec.Metadata.OwnerID,
			"conversation_id": rec.Metadata.ConversationID,
		},
	}

	if err := col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"message_id": rec.MessageID,
		"owner_id":   rec.Metadata.OwnerID,
	}).Debug("Indexed memory record")

	return nil
}

// Query returns up to k matches for the embedding, restricted to ownerID.
func (x *ChromemIndex) Query(ctx context.Context, embedding []float32, k int, ownerID string) ([]Match, error) {
	col, err := x.getOrCreateCollection(ownerID)
	if err != nil {
		return nil, err
	}

	// chromem rejects nResults larger than the collection size
	if count := col.Count(); k > count {
		k = count
	}
	if k <= 0 {
		return nil, nil
	}

	where := map[string]string{"owner_id": ownerID}
	results, err := col.QueryEmbedding(ctx, embedding, k, where, nil)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	matches := make([]Match, 0, len(results))
	for _, result := range results {
		matches = append(matches, Match{
			MessageID: result.ID,
			Metadata: Metadata{
				OwnerID:        result.Metadata["owner_id"],
				ConversationID: result.Metadata["conversation_id"],
				Text:           result.Content,
			},
			Score: result.Similarity,
		})
	}

	logger.Log.WithFields(logrus.Fields{
		"owner_id": ownerID,
		"matches":  len(matches),
	}).Debug("Vector query completed")

	return matches, nil
}

// PurgeConversation removes all records of a conversation.
func (x *ChromemIndex) PurgeConversation(ctx context.Context, ownerID, conversationID string) error {
	x.mu.RLock()
	col, exists := x.collections[ownerID]
	x.mu.RUnlock()
	if !exists {
		return nil // nothing indexed for this owner
	}

	where := map[string]string{
		"owner_id":        ownerID,
		"conversation_id": conversationID,
	}
	if err := col.Delete(ctx, where, nil); err != nil {
		return fmt.Errorf("delete records: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"owner_id":        ownerID,
		"conversation_id": conversationID,
	}).Info("Purged conversation memory records")

	return nil
}

// Close releases resources. chromem keeps everything in memory, so there
// is nothing to flush.
func (x *ChromemIndex) Close() error {
	return nil
}
