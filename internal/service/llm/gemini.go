package llm

import (
	"bytes"
	"chatnex/internal/config"
	"chatnex/internal/logger"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Gemini wire roles
const (
	geminiRoleUser  = "user"
	geminiRoleModel = "model"
)

// Ensure GeminiClient implements both provider interfaces
var (
	_ Generator = (*GeminiClient)(nil)
	_ Embedder  = (*GeminiClient)(nil)
)

// GeminiClient implements Generator and Embedder using direct calls to
// the Google generative-language REST API.
type GeminiClient struct {
	config     *config.LLMConfig
	dimensions int
	baseURL    string
	httpClient *http.Client
}

// NewGeminiClient creates a new Gemini client with config
func NewGeminiClient(llmConfig *config.LLMConfig, embedDimensions int) *GeminiClient {
	return &GeminiClient{
		config:     llmConfig,
		dimensions: embedDimensions,
		baseURL:    geminiBaseURL,
		httpClient: &http.Client{},
	}
}

// Request/response shapes of the generativelanguage API

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents          []geminiContent   `json:"contents"`
	SystemInstruction *geminiContent    `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type embedRequest struct {
	Model                string        `json:"model"`
	Content              geminiContent `json:"content"`
	OutputDimensionality int           `json:"outputDimensionality,omitempty"`
}

type embedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

// wireRole maps a message role to Gemini's role vocabulary
func wireRole(role string) string {
	if role == "assistant" {
		return geminiRoleModel
	}
	return geminiRoleUser
}

// Complete sends the turns to the generateContent endpoint and returns
// the first candidate's text.
func (c *GeminiClient) Complete(ctx context.Context, turns []Turn, systemPrompt string, opts GenerateOptions) (string, error) {
	if c.config.GeminiAPIKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY not configured")
	}

	contents := make([]geminiContent, 0, len(turns))
	for _, turn := range turns {
		contents = append(contents, geminiContent{
			Role:  wireRole(turn.Role),
			Parts: []geminiPart{{Text: turn.Content}},
		})
	}

	reqBody := generateRequest{
		Contents: contents,
		GenerationConfig: &generationConfig{
			Temperature:     opts.Temperature,
			MaxOutputTokens: opts.MaxOutputTokens,
		},
	}
	if systemPrompt != "" {
		reqBody.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}}
	}

	logger.Log.WithFields(logrus.Fields{
		"model":      c.config.Model,
		"turn_count": len(turns),
	}).Info("Calling Gemini generateContent")

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.config.Model)
	body, err := c.post(ctx, url, reqBody)
	if err != nil {
		return "", err
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("error decoding response: %w", err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from API")
	}

	content := genResp.Candidates[0].Content.Parts[0].Text
	logger.Log.WithField("content_length", len(content)).Debug("Extracted content from response")
	return content, nil
}

// EmbedText sends text to the embedContent endpoint, requesting the
// configured output dimensionality.
func (c *GeminiClient) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if c.config.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not configured")
	}

	reqBody := embedRequest{
		Model:                "models/" + c.config.EmbedModel,
		Content:              geminiContent{Parts: []geminiPart{{Text: text}}},
		OutputDimensionality: c.dimensions,
	}

	logger.Log.WithFields(logrus.Fields{
		"model":       c.config.EmbedModel,
		"text_length": len(text),
	}).Debug("Calling Gemini embedContent")

	url := fmt.Sprintf("%s/models/%s:embedContent", c.baseURL, c.config.EmbedModel)
	body, err := c.post(ctx, url, reqBody)
	if err != nil {
		return nil, err
	}

	var embResp embedResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}

	if len(embResp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("no embedding in response")
	}

	return embResp.Embedding.Values, nil
}

// Dimensions returns the embedding vector size
func (c *GeminiClient) Dimensions() int {
	return c.dimensions
}

// post performs an authenticated JSON POST and returns the raw body.
// Non-200 statuses become *APIError so the retry envelope can classify
// rate-limit and overload responses.
func (c *GeminiClient) post(ctx context.Context, url string, payload any) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.config.GeminiAPIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
