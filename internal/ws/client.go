package ws

import (
	"chatnex/internal/logger"
	"chatnex/internal/repository/db"
	"chatnex/internal/service/chat"
	"chatnex/pkg/validation"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxInboundSize = 64 * 1024
)

const (
	// EventSendMessage is the inbound event carrying a user turn.
	EventSendMessage = "send-message"
	// EventAssistantReply is the outbound event carrying the generated reply.
	EventAssistantReply = "assistant-reply"
	// EventError is the outbound event for a failed turn.
	EventError = "error"
)

type inboundEvent struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversationId"`
	Text           string `json:"text"`
}

type outboundEvent struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversationId,omitempty"`
	Text           string `json:"text,omitempty"`
	Message        string `json:"message,omitempty"`
}

// Client is one authenticated websocket connection. It is the Emitter
// the chat service writes through; all frames leave via the single
// writer pump so concurrent turns never interleave writes.
type Client struct {
	conn      *websocket.Conn
	user      *db.User
	chat      *chat.ChatService
	validator *validation.ChatRequestValidator

	send chan outboundEvent
	done chan struct{}
}

func newClient(conn *websocket.Conn, user *db.User, chatService *chat.ChatService, validator *validation.ChatRequestValidator) *Client {
	return &Client{
		conn:      conn,
		user:      user,
		chat:      chatService,
		validator: validator,
		send:      make(chan outboundEvent, 8),
		done:      make(chan struct{}),
	}
}

// EmitReply queues the assistant reply for the connection. It fails
// only when the connection is already gone; the caller treats that as
// a delivery problem, not a pipeline failure.
func (c *Client) EmitReply(conversationID, text string) error {
	return c.enqueue(outboundEvent{
		Type:           EventAssistantReply,
		ConversationID: conversationID,
		Text:           text,
	})
}

// EmitError queues an error event for the connection.
func (c *Client) EmitError(message string) error {
	return c.enqueue(outboundEvent{
		Type:    EventError,
		Message: message,
	})
}

func (c *Client) enqueue(event outboundEvent) error {
	select {
	case c.send <- event:
		return nil
	case <-c.done:
		return errors.New("connection closed")
	}
}

// readPump consumes inbound events until the connection drops. Each
// send-message event is handled on its own goroutine so slow
// generations in one conversation do not stall reads; per-conversation
// ordering is enforced by the chat service itself.
func (c *Client) readPump(ctx context.Context) {
	defer close(c.done)

	c.conn.SetReadLimit(maxInboundSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Log.WithError(err).WithField("user_id", c.user.ID).Debug("Websocket read error")
			}
			return
		}

		var event inboundEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			c.EmitError("invalid event payload")
			continue
		}

		switch event.Type {
		case EventSendMessage:
			if err := c.validator.ValidateSendMessage(event.ConversationID, event.Text); err != nil {
				c.EmitError(err.Error())
				continue
			}
			go c.handleSendMessage(ctx, event)
		default:
			c.EmitError("unknown event type: " + event.Type)
		}
	}
}

func (c *Client) handleSendMessage(ctx context.Context, event inboundEvent) {
	// A turn that is already running keeps going if the connection
	// drops; only the emit step notices the closed client.
	outcome := c.chat.HandleMessage(context.WithoutCancel(ctx), chat.SendMessageRequest{
		ConversationID: event.ConversationID,
		Text:           event.Text,
		UserID:         c.user.ID,
	}, c)

	logger.Log.WithFields(map[string]interface{}{
		"user_id":         c.user.ID,
		"conversation_id": event.ConversationID,
		"outcome":         string(outcome),
	}).Info("Message handled")
}

// writePump is the only goroutine allowed to write to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
