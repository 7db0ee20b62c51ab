package ws

import (
	"chatnex/internal/auth"
	"chatnex/internal/logger"
	"chatnex/internal/service/chat"
	"chatnex/pkg/validation"
	"net/http"

	"github.com/gorilla/websocket"
)

// Handler upgrades authenticated HTTP requests to websocket sessions.
// Authentication happens once at upgrade time; the resolved identity
// is carried by the connection for its whole lifetime.
type Handler struct {
	auth      *auth.Service
	chat      *chat.ChatService
	validator *validation.ChatRequestValidator
	upgrader  websocket.Upgrader
}

// NewHandler creates a new websocket Handler
func NewHandler(authService *auth.Service, chatService *chat.ChatService) *Handler {
	return &Handler{
		auth:      authService,
		chat:      chatService,
		validator: validation.NewChatRequestValidator(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Browser clients authenticate with the token cookie,
				// so same-origin enforcement happens at the proxy.
				return true
			},
		},
	}
}

// ServeWS handles GET /ws
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token, err := auth.TokenFromRequest(r)
	if err != nil {
		http.Error(w, "Missing authorization", http.StatusUnauthorized)
		return
	}

	user, err := h.auth.ResolveUser(token)
	if err != nil {
		logger.Log.WithError(err).Info("Websocket auth rejected")
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Error("Websocket upgrade failed")
		return
	}

	logger.Log.WithField("username", user.Username).Info("Websocket connected")

	client := newClient(conn, user, h.chat, h.validator)
	go client.writePump()
	client.readPump(r.Context())

	logger.Log.WithField("username", user.Username).Info("Websocket disconnected")
}
