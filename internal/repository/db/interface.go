package db

// Database defines the interface for all database operations
// This allows for easier testing through mocking and decouples the services from the specific database implementation
type Database interface {
	// Users
	GetUserByUsername(username string) (*User, error)
	GetUserByID(id string) (*User, error)
	CreateUser(username, email, password string) (*User, error)

	// Conversations
	CreateConversation(userID, title string) (*Conversation, error)
	GetConversation(id string) (*Conversation, error)
	GetConversationsByUser(userID string) ([]Conversation, error)
	DeleteConversation(id string) error

	// Messages
	AddMessage(conversationID, userID, role, content string) (*Message, error)
	GetRecentMessages(conversationID string, limit int) ([]Message, error)
	GetConversationMessages(conversationID string) ([]Message, error)

	Close() error
}
