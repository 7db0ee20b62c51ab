package postgres

import (
	"chatnex/internal/logger"
	"chatnex/internal/repository/db"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AddMessage adds a message to a conversation and refreshes the
// conversation's updated_at timestamp.
func (p *PostgresDB) AddMessage(conversationID, userID, role, content string) (*db.Message, error) {
	msgID := uuid.New().String()
	var seq int64
	var createdAt time.Time

	query := `
	INSERT INTO messages (id, conversation_id, user_id, role, content)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, seq, created_at
	`

	err := p.conn.QueryRow(query, msgID, conversationID, userID, role, content).Scan(&msgID, &seq, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("error adding message: %w", err)
	}

	// The timestamp refresh is a side effect, not part of the message
	// write; a failure here must not fail the message itself.
	if _, err := p.conn.Exec(`UPDATE conversations SET updated_at = CURRENT_TIMESTAMP WHERE id = $1`, conversationID); err != nil {
		logger.Log.WithError(err).Warn("Error updating conversation timestamp")
	}

	logger.Log.WithFields(logrus.Fields{
		"conversation_id": conversationID,
		"message_id":      msgID,
		"role":            role,
	}).Debug("Added message")

	return &db.Message{
		ID:             msgID,
		ConversationID: conversationID,
		UserID:         userID,
		Role:           role,
		Content:        content,
		Seq:            seq,
		CreatedAt:      createdAt,
	}, nil
}

// GetRecentMessages retrieves the last `limit` messages of a conversation
// in chronological order (oldest first). Ties on created_at are broken by
// the monotonic seq column so turn order matches insertion order.
func (p *PostgresDB) GetRecentMessages(conversationID string, limit int) ([]db.Message, error) {
	query := `
	SELECT id, conversation_id, user_id, role, content, seq, created_at
	FROM (
		SELECT id, conversation_id, user_id, role, content, seq, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT $2
	) recent
	ORDER BY created_at ASC, seq ASC
	`

	rows, err := p.conn.Query(query, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying recent messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// GetConversationMessages retrieves the full message history of a
// conversation in chronological order.
func (p *PostgresDB) GetConversationMessages(conversationID string) ([]db.Message, error) {
	query := `
	SELECT id, conversation_id, user_id, role, content, seq, created_at
	FROM messages
	WHERE conversation_id = $1
	ORDER BY created_at ASC, seq ASC
	`

	rows, err := p.conn.Query(query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanMessages(rows rowScanner) ([]db.Message, error) {
	var messages []db.Message
	for rows.Next() {
		var msg db.Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.UserID, &msg.Role, &msg.Content, &msg.Seq, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
