package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"chatnex/internal/auth"
	"chatnex/internal/logger"
	"chatnex/internal/repository/db"
	conversationService "chatnex/internal/service/conversation"
	"chatnex/pkg/validation"
)

// Request/Response types

type CreateConversationRequest struct {
	Title string `json:"title"`
}

type ConversationInfo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type ConversationsResponse struct {
	Conversations []ConversationInfo `json:"conversations"`
}

type MessageData struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

type MessagesResponse struct {
	Messages []MessageData `json:"messages"`
}

type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ErrorBody struct {
	Error string `json:"error"`
}

// ConversationHandlers serves the authenticated conversation-management endpoints
type ConversationHandlers struct {
	conversations *conversationService.ConversationService
	validator     *validation.ChatRequestValidator
}

// NewConversationHandlers creates a new ConversationHandlers
func NewConversationHandlers(conversations *conversationService.ConversationService) *ConversationHandlers {
	return &ConversationHandlers{
		conversations: conversations,
		validator:     validation.NewChatRequestValidator(),
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeServiceError(w http.ResponseWriter, err error) {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "unauthorized"):
		writeJSON(w, http.StatusForbidden, ErrorBody{Error: "You don't have access to this conversation"})
	case strings.Contains(msg, "not found"):
		writeJSON(w, http.StatusNotFound, ErrorBody{Error: "Conversation not found"})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorBody{Error: msg})
	}
}

func conversationInfo(conv db.Conversation) ConversationInfo {
	return ConversationInfo{
		ID:        conv.ID,
		Title:     conv.Title,
		CreatedAt: conv.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: conv.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// CreateConversationHandler creates a new conversation for the caller
func (h *ConversationHandlers) CreateConversationHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorBody{Error: "Not authenticated"})
		return
	}

	var req CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorBody{Error: "Invalid request body"})
		return
	}

	if err := h.validator.ValidateTitle(req.Title); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorBody{Error: err.Error()})
		return
	}

	conv, err := h.conversations.CreateConversation(userID, req.Title)
	if err != nil {
		logger.Log.WithError(err).Error("Error creating conversation")
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, conversationInfo(*conv))
}

// GetConversationsHandler lists the caller's conversations
func (h *ConversationHandlers) GetConversationsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorBody{Error: "Not authenticated"})
		return
	}

	conversations, err := h.conversations.GetUserConversations(userID)
	if err != nil {
		logger.Log.WithError(err).Error("Error fetching conversations")
		writeServiceError(w, err)
		return
	}

	resp := ConversationsResponse{Conversations: make([]ConversationInfo, 0, len(conversations))}
	for _, conv := range conversations {
		resp.Conversations = append(resp.Conversations, conversationInfo(conv))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetConversationMessagesHandler returns the ordered message history of a conversation
func (h *ConversationHandlers) GetConversationMessagesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorBody{Error: "Not authenticated"})
		return
	}

	conversationID := r.PathValue("id")
	messages, err := h.conversations.GetConversationMessages(conversationID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := MessagesResponse{Messages: make([]MessageData, 0, len(messages))}
	for _, msg := range messages {
		resp.Messages = append(resp.Messages, MessageData{
			ID:        msg.ID,
			Role:      msg.Role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// DeleteConversationHandler deletes a conversation and its messages
func (h *ConversationHandlers) DeleteConversationHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorBody{Error: "Not authenticated"})
		return
	}

	conversationID := r.PathValue("id")
	if err := h.conversations.DeleteConversation(r.Context(), conversationID, userID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DeleteResponse{Success: true, Message: "Conversation deleted successfully"})
}
