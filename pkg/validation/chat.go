package validation

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

const (
	maxMessageLength = 8000
	maxTitleLength   = 255
)

// ChatRequestValidator validates chat-related requests
type ChatRequestValidator struct{}

// NewChatRequestValidator creates a new ChatRequestValidator
func NewChatRequestValidator() *ChatRequestValidator {
	return &ChatRequestValidator{}
}

// ValidateMessage validates a chat message
func (v *ChatRequestValidator) ValidateMessage(message string) error {
	if message == "" {
		return errors.New("message cannot be empty")
	}

	if utf8.RuneCountInString(message) > maxMessageLength {
		return fmt.Errorf("message must be at most %d characters", maxMessageLength)
	}

	return nil
}

// ValidateTitle validates a conversation title
func (v *ChatRequestValidator) ValidateTitle(title string) error {
	if title == "" {
		return errors.New("title cannot be empty")
	}

	if utf8.RuneCountInString(title) > maxTitleLength {
		return fmt.Errorf("title must be at most %d characters", maxTitleLength)
	}

	return nil
}

// ValidateSendMessage validates an inbound send-message event
func (v *ChatRequestValidator) ValidateSendMessage(conversationID, message string) error {
	if conversationID == "" {
		return errors.New("conversationId is required")
	}

	return v.ValidateMessage(message)
}
