package llm

import (
	"chatnex/internal/config"
	"chatnex/internal/logger"
	"fmt"
)

// ProviderType represents the type of generation provider
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderGenkit ProviderType = "genkit"
)

// ParseProviderType parses a string into a ProviderType
func ParseProviderType(s string) (ProviderType, error) {
	switch s {
	case "gemini", "":
		return ProviderGemini, nil
	case "genkit":
		return ProviderGenkit, nil
	default:
		return "", fmt.Errorf("unknown provider type: %s", s)
	}
}

// NewGenerator creates the configured generation provider. The Gemini
// REST client doubles as the Embedder for either choice, so it is passed
// in rather than constructed here.
func NewGenerator(llmConfig *config.LLMConfig, gemini *GeminiClient) (Generator, error) {
	providerType, err := ParseProviderType(llmConfig.Provider)
	if err != nil {
		return nil, err
	}

	switch providerType {
	case ProviderGemini:
		logger.Log.Info("Using Gemini REST generation provider")
		return gemini, nil
	case ProviderGenkit:
		logger.Log.Info("Using Genkit generation provider")
		return NewGenkitProvider(llmConfig)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}
