package embedding

import (
	"context"

	"chatnex/internal/logger"
	"chatnex/internal/retry"
	"chatnex/internal/service/llm"
)

// Service derives semantic embeddings for message text. Embedding is an
// enhancement, not a correctness requirement: callers get a vector or an
// explicit unavailable signal, never an error.
type Service struct {
	embedder llm.Embedder
	policy   retry.Policy
}

// NewService creates a new embedding Service
func NewService(embedder llm.Embedder, policy retry.Policy) *Service {
	policy.Retryable = llm.IsRetryable
	return &Service{
		embedder: embedder,
		policy:   policy,
	}
}

// Embed converts text to a vector. The second return value is false when
// the backend is unavailable after retries; callers must then skip the
// memory path for this item rather than failing the pipeline.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, bool) {
	vector, err := retry.Do(ctx, s.policy, func() ([]float32, error) {
		return s.embedder.EmbedText(ctx, text)
	})
	if err != nil {
		logger.Log.WithError(err).Warn("Embedding unavailable")
		return nil, false
	}

	return vector, true
}
