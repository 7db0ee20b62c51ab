package embedding

import (
	"context"
	"testing"
	"time"

	"chatnex/internal/retry"
	"chatnex/internal/service/llm"
	"chatnex/internal/testutil"
)

func TestEmbed_ReturnsVector(t *testing.T) {
	embedder := &testutil.MockEmbedder{
		EmbedTextFunc: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{0.1, 0.2, 0.3}, nil
		},
	}

	service := NewService(embedder, retry.Policy{MaxAttempts: 1})
	vec, ok := service.Embed(context.Background(), "hello")

	if !ok {
		t.Fatal("Embed() ok = false, want true")
	}
	if len(vec) != 3 {
		t.Errorf("Embed() vector length = %d, want 3", len(vec))
	}
}

func TestEmbed_UnavailableAfterRetries(t *testing.T) {
	calls := 0
	embedder := &testutil.MockEmbedder{
		EmbedTextFunc: func(ctx context.Context, text string) ([]float32, error) {
			calls++
			return nil, &llm.APIError{StatusCode: 503, Body: "overloaded"}
		},
	}

	service := NewService(embedder, retry.Policy{MaxAttempts: 3, Delay: time.Millisecond})
	vec, ok := service.Embed(context.Background(), "hello")

	if ok {
		t.Error("Embed() ok = true, want unavailable signal")
	}
	if vec != nil {
		t.Errorf("Embed() vector = %v, want nil sentinel", vec)
	}
	if calls != 3 {
		t.Errorf("EmbedText calls = %d, want 3", calls)
	}
}

func TestEmbed_RecoversOnRetry(t *testing.T) {
	calls := 0
	embedder := &testutil.MockEmbedder{
		EmbedTextFunc: func(ctx context.Context, text string) ([]float32, error) {
			calls++
			if calls == 1 {
				return nil, &llm.APIError{StatusCode: 429, Body: "rate limited"}
			}
			return []float32{0.5}, nil
		},
	}

	service := NewService(embedder, retry.Policy{MaxAttempts: 3, Delay: time.Millisecond})
	vec, ok := service.Embed(context.Background(), "hello")

	if !ok || len(vec) != 1 {
		t.Errorf("Embed() = (%v, %v), want recovered vector", vec, ok)
	}
	if calls != 2 {
		t.Errorf("EmbedText calls = %d, want 2", calls)
	}
}
