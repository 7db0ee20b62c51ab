package conversation

import (
	"context"
	"fmt"

	"chatnex/internal/repository/db"
	"chatnex/internal/service/memory"
)

const maxTitleLength = 100

// ConversationService handles the business logic for conversation management
type ConversationService struct {
	db       db.Database
	memories *memory.Service
}

// NewConversationService creates a new ConversationService
func NewConversationService(database db.Database, memories *memory.Service) *ConversationService {
	return &ConversationService{
		db:       database,
		memories: memories,
	}
}

// CreateConversation creates a conversation owned by the user. Overlong
// titles are truncated rather than rejected.
func (s *ConversationService) CreateConversation(userID, title string) (*db.Conversation, error) {
	runes := []rune(title)
	if len(runes) > maxTitleLength {
		title = string(runes[:maxTitleLength])
	}

	conv, err := s.db.CreateConversation(userID, title)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, nil
}

// GetUserConversations retrieves all conversations for a user, most
// recently active first
func (s *ConversationService) GetUserConversations(userID string) ([]db.Conversation, error) {
	conversations, err := s.db.GetConversationsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve conversations: %w", err)
	}
	return conversations, nil
}

// GetConversationMessages retrieves the ordered message history of a
// conversation the user owns
func (s *ConversationService) GetConversationMessages(conversationID, userID string) ([]db.Message, error) {
	conversation, err := s.db.GetConversation(conversationID)
	if err != nil {
		return nil, fmt.Errorf("conversation not found: %w", err)
	}

	if conversation.UserID != userID {
		return nil, fmt.Errorf("unauthorized: user does not own this conversation")
	}

	messages, err := s.db.GetConversationMessages(conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve messages: %w", err)
	}

	return messages, nil
}

// DeleteConversation deletes a conversation if the user owns it. The
// durable delete cascades to messages; the derived memory records are
// purged best-effort afterwards.
func (s *ConversationService) DeleteConversation(ctx context.Context, conversationID, userID string) error {
	conversation, err := s.db.GetConversation(conversationID)
	if err != nil {
		return fmt.Errorf("conversation not found: %w", err)
	}

	if conversation.UserID != userID {
		return fmt.Errorf("unauthorized: user does not own this conversation")
	}

	if err := s.db.DeleteConversation(conversationID); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}

	s.memories.Forget(ctx, userID, conversationID)

	return nil
}
