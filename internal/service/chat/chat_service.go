package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"chatnex/internal/logger"
	"chatnex/internal/repository/db"
	"chatnex/internal/repository/vector"
	"chatnex/internal/service/embedding"
	"chatnex/internal/service/generation"
	"chatnex/internal/service/llm"
	"chatnex/internal/service/memory"

	"github.com/sirupsen/logrus"
)

// ErrorMessage is the single user-visible error event payload for
// conversational-path failures.
const ErrorMessage = "Something went wrong while answering. Please try again."

// Outcome is the terminal state of a pipeline run.
type Outcome string

const (
	// OutcomeCompleted: reply emitted, both turns persisted and indexed.
	OutcomeCompleted Outcome = "completed"
	// OutcomeCompletedDegraded: reply emitted, memory path skipped.
	OutcomeCompletedDegraded Outcome = "completed-degraded"
	// OutcomeFailed: an error event was emitted instead of a reply.
	OutcomeFailed Outcome = "failed"
)

// Emitter delivers outbound events to the caller's connection. Exactly
// one of the two is invoked per inbound message.
type Emitter interface {
	EmitReply(conversationID, text string) error
	EmitError(message string) error
}

// SendMessageRequest is one inbound send-message event
type SendMessageRequest struct {
	ConversationID string
	Text           string
	UserID         string // resolved by the session gate
}

// ChatService runs the message-orchestration pipeline: persist the user
// turn, derive its embedding, recall prior context, assemble a bounded
// payload, generate the reply, emit it, then persist and re-index the
// reply in the background.
type ChatService struct {
	db            db.Database
	embeddings    *embedding.Service
	memories      *memory.Service
	generator     *generation.Service
	historyWindow int

	// one in-flight pipeline run per conversation
	mu    sync.Mutex
	locks map[string]*sync.Mutex

	// in-flight fire-and-forget memory writes, joined on shutdown
	background sync.WaitGroup
}

// NewChatService creates a new ChatService
func NewChatService(database db.Database, embeddings *embedding.Service, memories *memory.Service, generator *generation.Service, historyWindow int) *ChatService {
	return &ChatService{
		db:            database,
		embeddings:    embeddings,
		memories:      memories,
		generator:     generator,
		historyWindow: historyWindow,
		locks:         make(map[string]*sync.Mutex),
	}
}

// HandleMessage executes one pipeline run. Any conversational-path
// failure converts into a single error event; the caller always receives
// exactly one outbound event.
func (s *ChatService) HandleMessage(ctx context.Context, req SendMessageRequest, emit Emitter) Outcome {
	unlock := s.lockConversation(req.ConversationID)
	defer unlock()

	outcome, err := s.run(ctx, req, emit)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"conversation_id": req.ConversationID,
			"user_id":         req.UserID,
		}).WithError(err).Error("Pipeline run failed")

		if emitErr := emit.EmitError(ErrorMessage); emitErr != nil {
			logger.Log.WithError(emitErr).Warn("Failed to emit error event")
		}
		return OutcomeFailed
	}

	return outcome
}

type embedResult struct {
	vector []float32
	ok     bool
}

func (s *ChatService) run(ctx context.Context, req SendMessageRequest, emit Emitter) (Outcome, error) {
	conversation, err := s.db.GetConversation(req.ConversationID)
	if err != nil {
		return "", fmt.Errorf("conversation lookup failed: %w", err)
	}
	if conversation.UserID != req.UserID {
		return "", fmt.Errorf("unauthorized: user does not own this conversation")
	}

	// Persist the user turn and embed its text concurrently; neither
	// depends on the other's result.
	userEmbedCh := make(chan embedResult, 1)
	go func() {
		v, ok := s.embeddings.Embed(ctx, req.Text)
		userEmbedCh <- embedResult{vector: v, ok: ok}
	}()

	userMsg, err := s.db.AddMessage(req.ConversationID, req.UserID, db.RoleUser, req.Text)
	if err != nil {
		return "", fmt.Errorf("failed to save user message: %w", err)
	}

	userEmb := <-userEmbedCh

	// Index the user turn in the background; the conversational path
	// never waits on memory writes.
	if userEmb.ok {
		s.rememberAsync(userEmb.vector, userMsg.ID, vector.Metadata{
			OwnerID:        req.UserID,
			ConversationID: req.ConversationID,
			Text:           req.Text,
		})
	}

	// Recall never errors: an unavailable embedding or failed index
	// query just means no retrieved context.
	matches := s.memories.Recall(ctx, userEmb.vector, req.UserID)

	history, err := s.db.GetRecentMessages(req.ConversationID, s.historyWindow)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve conversation history: %w", err)
	}

	turns := assembleTurns(history, matches, req.Text)

	logger.Log.WithFields(logrus.Fields{
		"conversation_id": req.ConversationID,
		"turn_count":      len(turns),
		"recalled":        len(matches),
	}).Debug("Prepared turns for generation")

	// Synchronization point: recall and history are both in hand.
	// Generate never errors; terminal upstream failure degrades to the
	// fixed apology turn inside the adapter.
	reply := s.generator.Generate(ctx, turns)

	// Emit before persisting the reply to minimize perceived latency. A
	// gone channel fails silently; persistence still proceeds.
	if err := emit.EmitReply(req.ConversationID, reply); err != nil {
		logger.Log.WithField("conversation_id", req.ConversationID).WithError(err).Warn("Failed to deliver reply")
	}

	// Persist and embed the assistant turn, again independently.
	asstEmbedCh := make(chan embedResult, 1)
	go func() {
		v, ok := s.embeddings.Embed(ctx, reply)
		asstEmbedCh <- embedResult{vector: v, ok: ok}
	}()

	asstMsg, persistErr := s.db.AddMessage(req.ConversationID, req.UserID, db.RoleAssistant, reply)
	asstEmb := <-asstEmbedCh

	if persistErr != nil {
		// The reply already reached the user, so a second (error) event
		// is off the table; the run degrades instead.
		logger.Log.WithField("conversation_id", req.ConversationID).WithError(persistErr).Error("Failed to save assistant message")
		return OutcomeCompletedDegraded, nil
	}

	if asstEmb.ok {
		s.rememberAsync(asstEmb.vector, asstMsg.ID, vector.Metadata{
			OwnerID:        req.UserID,
			ConversationID: req.ConversationID,
			Text:           reply,
		})
	}

	if !userEmb.ok || !asstEmb.ok {
		return OutcomeCompletedDegraded, nil
	}
	return OutcomeCompleted, nil
}

// assembleTurns maps the persisted history to role-tagged turns and
// attaches recalled context to the final user turn, so the payload
// always ends on a user-authored turn.
func assembleTurns(history []db.Message, matches []vector.Match, currentText string) []llm.Turn {
	turns := make([]llm.Turn, 0, len(history)+1)
	for _, msg := range history {
		turns = append(turns, llm.Turn{Role: msg.Role, Content: msg.Content})
	}

	contextBlock := ""
	if len(matches) > 0 {
		texts := make([]string, 0, len(matches))
		for _, m := range matches {
			texts = append(texts, m.Metadata.Text)
		}
		contextBlock = fmt.Sprintf("[Memory Context: %s]\n\n", strings.Join(texts, " | "))
	}

	if len(turns) == 0 {
		// First message of a conversation read back before it was
		// visible; fall back to the inbound text itself.
		return []llm.Turn{{Role: db.RoleUser, Content: contextBlock + currentText}}
	}

	last := len(turns) - 1
	turns[last].Content = contextBlock + turns[last].Content
	return turns
}

// rememberAsync runs a memory upsert on a tracked goroutine. The write
// may outlive the request, so it carries a fresh context; Shutdown joins
// all in-flight writes.
func (s *ChatService) rememberAsync(embedding []float32, messageID string, meta vector.Metadata) {
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		s.memories.Remember(context.Background(), embedding, messageID, meta)
	}()
}

// lockConversation serializes pipeline runs per conversation id, so a
// rapid double-send cannot interleave history reads and writes.
func (s *ChatService) lockConversation(conversationID string) func() {
	s.mu.Lock()
	lock, ok := s.locks[conversationID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[conversationID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Shutdown waits for in-flight background memory writes, bounded by ctx.
func (s *ChatService) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.background.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
