package llm

import (
	"testing"

	"chatnex/internal/config"
)

func TestParseProviderType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ProviderType
		wantErr bool
	}{
		{"gemini", "gemini", ProviderGemini, false},
		{"genkit", "genkit", ProviderGenkit, false},
		{"empty defaults to gemini", "", ProviderGemini, false},
		{"unknown", "mystery", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProviderType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseProviderType() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseProviderType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewGenerator_Gemini(t *testing.T) {
	llmConfig := &config.LLMConfig{Provider: "gemini", GeminiAPIKey: "test-key", Model: "gemini-1.5-flash"}
	gemini := NewGeminiClient(llmConfig, 768)

	generator, err := NewGenerator(llmConfig, gemini)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	if generator != Generator(gemini) {
		t.Error("NewGenerator() did not return the shared Gemini client")
	}
}

func TestNewGenerator_UnknownProvider(t *testing.T) {
	llmConfig := &config.LLMConfig{Provider: "mystery"}

	if _, err := NewGenerator(llmConfig, NewGeminiClient(llmConfig, 768)); err == nil {
		t.Error("NewGenerator() error = nil for unknown provider, want error")
	}
}
