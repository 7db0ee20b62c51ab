package testutil

import (
	"chatnex/internal/repository/db"
	"chatnex/internal/repository/vector"
	"chatnex/internal/service/llm"
	"context"
	"errors"
)

// MockDatabase is a mock implementation of db.Database for testing
type MockDatabase struct {
	// User mocks
	GetUserByUsernameFunc func(username string) (*db.User, error)
	GetUserByIDFunc       func(id string) (*db.User, error)
	CreateUserFunc        func(username, email, password string) (*db.User, error)

	// Conversation mocks
	CreateConversationFunc     func(userID, title string) (*db.Conversation, error)
	GetConversationFunc        func(id string) (*db.Conversation, error)
	GetConversationsByUserFunc func(userID string) ([]db.Conversation, error)
	DeleteConversationFunc     func(id string) error

	// Message mocks
	AddMessageFunc              func(conversationID, userID, role, content string) (*db.Message, error)
	GetRecentMessagesFunc       func(conversationID string, limit int) ([]db.Message, error)
	GetConversationMessagesFunc func(conversationID string) ([]db.Message, error)
}

func (m *MockDatabase) GetUserByUsername(username string) (*db.User, error) {
	if m.GetUserByUsernameFunc != nil {
		return m.GetUserByUsernameFunc(username)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) GetUserByID(id string) (*db.User, error) {
	if m.GetUserByIDFunc != nil {
		return m.GetUserByIDFunc(id)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) CreateUser(username, email, password string) (*db.User, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(username, email, password)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) CreateConversation(userID, title string) (*db.Conversation, error) {
	if m.CreateConversationFunc != nil {
		return m.CreateConversationFunc(userID, title)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) GetConversation(id string) (*db.Conversation, error) {
	if m.GetConversationFunc != nil {
		return m.GetConversationFunc(id)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) GetConversationsByUser(userID string) ([]db.Conversation, error) {
	if m.GetConversationsByUserFunc != nil {
		return m.GetConversationsByUserFunc(userID)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) DeleteConversation(id string) error {
	if m.DeleteConversationFunc != nil {
		return m.DeleteConversationFunc(id)
	}
	return errors.New("not implemented")
}

func (m *MockDatabase) AddMessage(conversationID, userID, role, content string) (*db.Message, error) {
	if m.AddMessageFunc != nil {
		return m.AddMessageFunc(conversationID, userID, role, content)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) GetRecentMessages(conversationID string, limit int) ([]db.Message, error) {
	if m.GetRecentMessagesFunc != nil {
		return m.GetRecentMessagesFunc(conversationID, limit)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) GetConversationMessages(conversationID string) ([]db.Message, error) {
	if m.GetConversationMessagesFunc != nil {
		return m.GetConversationMessagesFunc(conversationID)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) Close() error {
	return nil
}

// MockIndex is a mock implementation of vector.Index for testing
type MockIndex struct {
	UpsertFunc            func(ctx context.Context, rec vector.Record) error
	QueryFunc             func(ctx context.Context, embedding []float32, k int, ownerID string) ([]vector.Match, error)
	PurgeConversationFunc func(ctx context.Context, ownerID, conversationID string) error
}

func (m *MockIndex) Upsert(ctx context.Context, rec vector.Record) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, rec)
	}
	return errors.New("not implemented")
}

func (m *MockIndex) Query(ctx context.Context, embedding []float32, k int, ownerID string) ([]vector.Match, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, embedding, k, ownerID)
	}
	return nil, errors.New("not implemented")
}

func (m *MockIndex) PurgeConversation(ctx context.Context, ownerID, conversationID string) error {
	if m.PurgeConversationFunc != nil {
		return m.PurgeConversationFunc(ctx, ownerID, conversationID)
	}
	return errors.New("not implemented")
}

func (m *MockIndex) Close() error {
	return nil
}

// MockGenerator is a mock implementation of llm.Generator for testing
type MockGenerator struct {
	CompleteFunc func(ctx context.Context, turns []llm.Turn, systemPrompt string, opts llm.GenerateOptions) (string, error)
}

func (m *MockGenerator) Complete(ctx context.Context, turns []llm.Turn, systemPrompt string, opts llm.GenerateOptions) (string, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, turns, systemPrompt, opts)
	}
	return "", errors.New("not implemented")
}

// MockEmbedder is a mock implementation of llm.Embedder for testing
type MockEmbedder struct {
	EmbedTextFunc  func(ctx context.Context, text string) ([]float32, error)
	DimensionsFunc func() int
}

func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return nil, errors.New("not implemented")
}

func (m *MockEmbedder) Dimensions() int {
	if m.DimensionsFunc != nil {
		return m.DimensionsFunc()
	}
	return 768
}
