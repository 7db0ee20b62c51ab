package ws

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chatnex/internal/auth"
	"chatnex/internal/config"
	"chatnex/internal/repository/db"
	"chatnex/internal/repository/vector"
	"chatnex/internal/retry"
	"chatnex/internal/service/chat"
	"chatnex/internal/service/embedding"
	"chatnex/internal/service/generation"
	"chatnex/internal/service/llm"
	"chatnex/internal/service/memory"
	"chatnex/internal/testutil"

	"github.com/gorilla/websocket"
)

func newTestHandler(t *testing.T, reply string) (*Handler, string) {
	t.Helper()

	database := &testutil.MockDatabase{
		GetUserByIDFunc: func(id string) (*db.User, error) {
			return &db.User{ID: id, Username: "alice"}, nil
		},
		GetConversationFunc: func(id string) (*db.Conversation, error) {
			return &db.Conversation{ID: id, UserID: "user-1"}, nil
		},
		AddMessageFunc: func(conversationID, userID, role, content string) (*db.Message, error) {
			return &db.Message{ID: "msg-1", ConversationID: conversationID, UserID: userID, Role: role, Content: content}, nil
		},
		GetRecentMessagesFunc: func(conversationID string, limit int) ([]db.Message, error) {
			return nil, nil
		},
	}

	embedder := &testutil.MockEmbedder{
		EmbedTextFunc: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{0.1}, nil
		},
	}
	generator := &testutil.MockGenerator{
		CompleteFunc: func(ctx context.Context, turns []llm.Turn, systemPrompt string, opts llm.GenerateOptions) (string, error) {
			return reply, nil
		},
	}

	policy := retry.Policy{MaxAttempts: 1, Delay: time.Millisecond}
	llmConfig := &config.LLMConfig{SystemPrompt: "test", Temperature: 0.7, MaxOutputTokens: 512}

	chatService := chat.NewChatService(
		database,
		embedding.NewService(embedder, policy),
		memory.NewService(&testutil.MockIndex{
			UpsertFunc: func(ctx context.Context, rec vector.Record) error { return nil },
			QueryFunc: func(ctx context.Context, emb []float32, k int, ownerID string) ([]vector.Match, error) {
				return nil, nil
			},
		}, 3),
		generation.NewService(generator, llmConfig, policy),
		15,
	)

	authConfig := config.AuthConfig{JWTSecret: []byte("0123456789abcdef0123456789abcdef"), TokenExpiration: time.Hour}
	authService := auth.NewService(database, authConfig)

	token, err := authService.GenerateToken(&db.User{ID: "user-1", Username: "alice"})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	return NewHandler(authService, chatService), token
}

func dial(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("Dial() error = %v (status %d)", err, status)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestServeWS_RejectsMissingToken(t *testing.T) {
	handler, _ := newTestHandler(t, "hi")
	server := httptest.NewServer(http.HandlerFunc(handler.ServeWS))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("Dial() succeeded without a token, want rejection")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("handshake response = %v, want 401", resp)
	}
}

func TestServeWS_SendMessageRoundtrip(t *testing.T) {
	handler, token := newTestHandler(t, "Hello from the model")
	server := httptest.NewServer(http.HandlerFunc(handler.ServeWS))
	defer server.Close()

	conn := dial(t, server, token)

	event := map[string]string{
		"type":           EventSendMessage,
		"conversationId": "conv-1",
		"text":           "Hello",
	}
	if err := conn.WriteJSON(event); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var reply outboundEvent
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}

	if reply.Type != EventAssistantReply {
		t.Errorf("reply type = %q, want %q", reply.Type, EventAssistantReply)
	}
	if reply.ConversationID != "conv-1" || reply.Text != "Hello from the model" {
		t.Errorf("reply = %+v, want the generated text tagged with the conversation", reply)
	}
}

func TestServeWS_InvalidEventGetsErrorEvent(t *testing.T) {
	handler, token := newTestHandler(t, "hi")
	server := httptest.NewServer(http.HandlerFunc(handler.ServeWS))
	defer server.Close()

	conn := dial(t, server, token)

	tests := []struct {
		name    string
		payload string
	}{
		{"unknown type", fmt.Sprintf(`{"type":%q}`, "mystery")},
		{"missing conversation", fmt.Sprintf(`{"type":%q,"text":"hi"}`, EventSendMessage)},
		{"empty text", fmt.Sprintf(`{"type":%q,"conversationId":"conv-1","text":""}`, EventSendMessage)},
		{"not json", `{{{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.payload)); err != nil {
				t.Fatalf("WriteMessage() error = %v", err)
			}

			conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			var event outboundEvent
			if err := conn.ReadJSON(&event); err != nil {
				t.Fatalf("ReadJSON() error = %v", err)
			}
			if event.Type != EventError {
				t.Errorf("event type = %q, want %q", event.Type, EventError)
			}
		})
	}
}
