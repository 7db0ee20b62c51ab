package llm

import (
	"chatnex/internal/config"
	"chatnex/internal/logger"
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai"
	"github.com/openai/openai-go"
	"github.com/sirupsen/logrus"
)

// Gemini exposes an OpenAI-compatible surface the compat_oai plugin can drive
const geminiOpenAIBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// Ensure GenkitProvider implements the Generator interface
var _ Generator = (*GenkitProvider)(nil)

// GenkitProvider implements Generator using Firebase Genkit over Gemini's
// OpenAI-compatible endpoint. Generation only; embeddings always go
// through the direct REST client.
type GenkitProvider struct {
	genkit *genkit.Genkit
	config *config.LLMConfig
}

// NewGenkitProvider creates a new Genkit provider instance configured for Gemini
func NewGenkitProvider(llmConfig *config.LLMConfig) (*GenkitProvider, error) {
	if llmConfig.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not configured")
	}

	ctx := context.Background()

	g := genkit.Init(ctx,
		genkit.WithPlugins(&compat_oai.OpenAICompatible{
			Provider: "googleai",
			APIKey:   llmConfig.GeminiAPIKey,
			BaseURL:  geminiOpenAIBaseURL,
		}),
		genkit.WithDefaultModel("googleai/"+llmConfig.Model),
	)

	logger.Log.WithField("model", llmConfig.Model).Info("Initialized Genkit with Gemini provider")

	return &GenkitProvider{
		genkit: g,
		config: llmConfig,
	}, nil
}

// Complete sends the turns through Genkit and returns the generated text
func (p *GenkitProvider) Complete(ctx context.Context, turns []Turn, systemPrompt string, opts GenerateOptions) (string, error) {
	logger.Log.WithFields(logrus.Fields{
		"model":      p.config.Model,
		"turn_count": len(turns),
	}).Info("Calling Genkit")

	var genkitMessages []*ai.Message
	if systemPrompt != "" {
		genkitMessages = append(genkitMessages, &ai.Message{
			Role:    ai.RoleSystem,
			Content: []*ai.Part{ai.NewTextPart(systemPrompt)},
		})
	}
	for _, turn := range turns {
		role := ai.RoleUser
		if turn.Role == "assistant" {
			role = ai.RoleModel
		}
		genkitMessages = append(genkitMessages, &ai.Message{
			Role:    role,
			Content: []*ai.Part{ai.NewTextPart(turn.Content)},
		})
	}

	// Sampling parameters travel as OpenAI ChatCompletionNewParams
	cfg := &openai.ChatCompletionNewParams{
		Temperature: openai.Float(opts.Temperature),
		MaxTokens:   openai.Int(int64(opts.MaxOutputTokens)),
	}

	resp, err := genkit.Generate(ctx, p.genkit,
		ai.WithMessages(genkitMessages...),
		ai.WithModelName("googleai/"+p.config.Model),
		ai.WithConfig(cfg),
	)
	if err != nil {
		return "", fmt.Errorf("genkit generation failed: %w", err)
	}

	return resp.Text(), nil
}
