package main

import (
	"chatnex/internal/app"
	"chatnex/internal/config"
	"chatnex/internal/logger"
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 15 * time.Second

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load configuration")
	}

	application, err := app.New(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize application")
	}

	// Create new ServeMux to use Go 1.22+ routing features for path parameters
	mux := http.NewServeMux()

	// CORS preflight handler for OPTIONS requests
	corsHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.WriteHeader(http.StatusOK)
	}

	authService := application.Auth
	conversations := application.Conversations

	// Public routes
	mux.HandleFunc("POST /api/login", enableCORS(authService.LoginHandler))
	mux.HandleFunc("OPTIONS /api/login", corsHandler)
	mux.HandleFunc("POST /api/register", enableCORS(authService.RegisterHandler))
	mux.HandleFunc("OPTIONS /api/register", corsHandler)
	mux.HandleFunc("GET /api/health", enableCORS(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}))
	mux.HandleFunc("OPTIONS /api/health", corsHandler)

	// Websocket endpoint authenticates at upgrade time, no middleware
	mux.HandleFunc("GET /ws", application.WS.ServeWS)

	// Protected routes - use method-based routing (Go 1.22+ native)
	mux.HandleFunc("POST /api/conversations", enableCORS(authService.Middleware(conversations.CreateConversationHandler)))
	mux.HandleFunc("GET /api/conversations", enableCORS(authService.Middleware(conversations.GetConversationsHandler)))
	mux.HandleFunc("OPTIONS /api/conversations", corsHandler)

	// Protected parameterized routes (Go 1.22+ native path parameters with {id})
	mux.HandleFunc("GET /api/conversations/{id}/messages", enableCORS(authService.Middleware(conversations.GetConversationMessagesHandler)))
	mux.HandleFunc("OPTIONS /api/conversations/{id}/messages", corsHandler)
	mux.HandleFunc("DELETE /api/conversations/{id}", enableCORS(authService.Middleware(conversations.DeleteConversationHandler)))
	mux.HandleFunc("OPTIONS /api/conversations/{id}", corsHandler)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: mux,
	}

	go func() {
		logger.Log.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Server failed to start")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Warn("HTTP server shutdown error")
	}

	application.Shutdown(ctx)

	logger.Log.Info("Shutdown complete")
}
