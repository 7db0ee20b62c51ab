package generation

import (
	"context"

	"chatnex/internal/config"
	"chatnex/internal/logger"
	"chatnex/internal/retry"
	"chatnex/internal/service/llm"
)

// ApologyMessage is the fixed assistant turn returned when the backend
// stays unavailable through retries. The pipeline's contract is that the
// user always gets some assistant turn back.
const ApologyMessage = "Sorry, I'm a bit overloaded right now. Please try again in a moment!"

// Service produces assistant replies with a fixed persona and fixed
// sampling parameters. These are configuration constants, not per-call
// inputs.
type Service struct {
	generator    llm.Generator
	systemPrompt string
	opts         llm.GenerateOptions
	policy       retry.Policy
}

// NewService creates a new generation Service
func NewService(generator llm.Generator, llmConfig *config.LLMConfig, policy retry.Policy) *Service {
	policy.Retryable = llm.IsRetryable
	return &Service{
		generator:    generator,
		systemPrompt: llmConfig.SystemPrompt,
		opts: llm.GenerateOptions{
			Temperature:     llmConfig.Temperature,
			MaxOutputTokens: llmConfig.MaxOutputTokens,
		},
		policy: policy,
	}
}

// Generate returns the assistant reply for the assembled turns. On
// terminal upstream failure it degrades to the fixed apology string
// instead of propagating the error.
func (s *Service) Generate(ctx context.Context, turns []llm.Turn) string {
	response, err := retry.Do(ctx, s.policy, func() (string, error) {
		return s.generator.Complete(ctx, turns, s.systemPrompt, s.opts)
	})
	if err != nil {
		logger.Log.WithError(err).Error("Generation failed, returning apology")
		return ApologyMessage
	}

	return response
}
