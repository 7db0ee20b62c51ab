package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Turn is one role-tagged entry of a conversation, oldest first. Roles
// follow the message model ("user", "assistant"); providers map them to
// their own wire vocabulary.
type Turn struct {
	Role    string
	Content string
}

// GenerateOptions carries the sampling parameters for a completion call.
type GenerateOptions struct {
	Temperature     float64
	MaxOutputTokens int
}

// Generator produces a text completion for an ordered list of turns.
// The last turn must be user-authored.
type Generator interface {
	Complete(ctx context.Context, turns []Turn, systemPrompt string, opts GenerateOptions) (string, error)
}

// Embedder converts text to a fixed-length embedding vector.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// APIError is a failed upstream HTTP call, preserving the status code so
// callers can classify it.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Body)
}

// IsRetryable reports whether an upstream failure is transient
// (rate-limited or overloaded) and worth retrying.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode == http.StatusServiceUnavailable
}
