package db

import "time"

// User represents a user in the database
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Conversation represents a conversation in the database
type Conversation struct {
	ID        string
	UserID    string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message roles. The assistant role maps to Gemini's "model" role at
// the provider boundary.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a message in a conversation. Messages are immutable
// once created; Seq is a monotonic insertion counter used to break
// created_at ties when reconstructing turn order.
type Message struct {
	ID             string
	ConversationID string
	UserID         string
	Role           string
	Content        string
	Seq            int64
	CreatedAt      time.Time
}
