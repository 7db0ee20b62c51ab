package postgres

import (
	"chatnex/internal/logger"
	"chatnex/internal/repository/db"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CreateConversation creates a new conversation for a user
func (p *PostgresDB) CreateConversation(userID, title string) (*db.Conversation, error) {
	convID := uuid.New().String()
	var createdAt, updatedAt time.Time

	query := `
	INSERT INTO conversations (id, user_id, title)
	VALUES ($1, $2, $3)
	RETURNING id, created_at, updated_at
	`

	err := p.conn.QueryRow(query, convID, userID, title).Scan(&convID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating conversation: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{"conversation_id": convID, "user_id": userID}).Info("Created new conversation")

	return &db.Conversation{
		ID:        convID,
		UserID:    userID,
		Title:     title,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// GetConversation retrieves a specific conversation
func (p *PostgresDB) GetConversation(convID string) (*db.Conversation, error) {
	var conv db.Conversation
	query := `
	SELECT id, user_id, title, created_at, updated_at
	FROM conversations
	WHERE id = $1
	`

	err := p.conn.QueryRow(query, convID).Scan(&conv.ID, &conv.UserID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("conversation not found")
		}
		return nil, fmt.Errorf("error retrieving conversation: %w", err)
	}

	return &conv, nil
}

// GetConversationsByUser retrieves all conversations for a user, most recently active first
func (p *PostgresDB) GetConversationsByUser(userID string) ([]db.Conversation, error) {
	query := `
	SELECT id, user_id, title, created_at, updated_at
	FROM conversations
	WHERE user_id = $1
	ORDER BY updated_at DESC
	`

	rows, err := p.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying conversations: %w", err)
	}
	defer rows.Close()

	var conversations []db.Conversation
	for rows.Next() {
		var conv db.Conversation
		if err := rows.Scan(&conv.ID, &conv.UserID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning conversation: %w", err)
		}
		conversations = append(conversations, conv)
	}

	return conversations, rows.Err()
}

// DeleteConversation deletes a conversation. Its messages go with it via
// the ON DELETE CASCADE constraint.
func (p *PostgresDB) DeleteConversation(convID string) error {
	result, err := p.conn.Exec(`DELETE FROM conversations WHERE id = $1`, convID)
	if err != nil {
		return fmt.Errorf("error deleting conversation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("conversation not found")
	}

	logger.Log.WithField("conversation_id", convID).Info("Deleted conversation")
	return nil
}
