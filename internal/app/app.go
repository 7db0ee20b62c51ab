package app

import (
	"chatnex/internal/api/handlers"
	"chatnex/internal/auth"
	"chatnex/internal/config"
	"chatnex/internal/logger"
	"chatnex/internal/repository/postgres"
	"chatnex/internal/repository/vector"
	"chatnex/internal/retry"
	"chatnex/internal/service/chat"
	"chatnex/internal/service/conversation"
	"chatnex/internal/service/embedding"
	"chatnex/internal/service/generation"
	"chatnex/internal/service/llm"
	"chatnex/internal/service/memory"
	"chatnex/internal/ws"
	"context"
	"fmt"
)

// App holds all constructed application dependencies. It is the single
// composition root: everything downstream receives its collaborators
// through constructors, nothing reaches for globals.
type App struct {
	Config *config.AppConfig

	DB    *postgres.PostgresDB
	Index vector.Index

	Auth          *auth.Service
	Chat          *chat.ChatService
	Conversations *handlers.ConversationHandlers
	WS            *ws.Handler
}

// New builds the full dependency graph from configuration.
func New(cfg *config.AppConfig) (*App, error) {
	database, err := postgres.NewPostgresDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	index := vector.NewChromemIndex()

	gemini := llm.NewGeminiClient(&cfg.LLM, cfg.Memory.EmbedDimensions)
	generator, err := llm.NewGenerator(&cfg.LLM, gemini)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create generation provider: %w", err)
	}

	policy := retry.Policy{
		MaxAttempts: cfg.LLM.RetryAttempts,
		Delay:       cfg.LLM.RetryDelay,
		Retryable:   llm.IsRetryable,
	}

	embeddingService := embedding.NewService(gemini, policy)
	memoryService := memory.NewService(index, cfg.Memory.RecallLimit)
	generationService := generation.NewService(generator, &cfg.LLM, policy)
	chatService := chat.NewChatService(database, embeddingService, memoryService, generationService, cfg.Chat.HistoryWindow)

	authService := auth.NewService(database, cfg.Auth)
	conversationService := conversation.NewConversationService(database, memoryService)

	return &App{
		Config:        cfg,
		DB:            database,
		Index:         index,
		Auth:          authService,
		Chat:          chatService,
		Conversations: handlers.NewConversationHandlers(conversationService),
		WS:            ws.NewHandler(authService, chatService),
	}, nil
}

// Shutdown drains in-flight background work and releases resources.
func (a *App) Shutdown(ctx context.Context) {
	if err := a.Chat.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Warn("Background writes did not drain before deadline")
	}

	if err := a.Index.Close(); err != nil {
		logger.Log.WithError(err).Warn("Error closing vector index")
	}

	if err := a.DB.Close(); err != nil {
		logger.Log.WithError(err).Warn("Error closing database")
	}
}
