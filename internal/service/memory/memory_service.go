package memory

import (
	"context"

	"chatnex/internal/logger"
	"chatnex/internal/repository/vector"

	"github.com/sirupsen/logrus"
)

// Service wraps the vector index with the pipeline's memory semantics:
// writes never surface errors and reads are always owner-scoped and
// capped. The index itself stays ignorant of these policies.
type Service struct {
	index       vector.Index
	recallLimit int
}

// NewService creates a new memory Service
func NewService(index vector.Index, recallLimit int) *Service {
	return &Service{
		index:       index,
		recallLimit: recallLimit,
	}
}

// Remember upserts a memory record for a message. Failures are logged
// and swallowed; the durable message row is the source of truth and the
// record can be rebuilt from it.
func (s *Service) Remember(ctx context.Context, embedding []float32, messageID string, meta vector.Metadata) {
	if embedding == nil {
		return
	}

	err := s.index.Upsert(ctx, vector.Record{
		MessageID: messageID,
		Embedding: embedding,
		Metadata:  meta,
	})
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"message_id": messageID,
			"owner_id":   meta.OwnerID,
		}).WithError(err).Warn("Failed to store memory record")
		return
	}

	logger.Log.WithField("message_id", messageID).Debug("Stored memory record")
}

// Recall queries the index for the owner's most relevant memories. A nil
// embedding (unavailable sentinel) short-circuits to no matches, and
// index failures degrade the same way; recall never errors.
func (s *Service) Recall(ctx context.Context, embedding []float32, ownerID string) []vector.Match {
	if embedding == nil {
		return nil
	}

	matches, err := s.index.Query(ctx, embedding, s.recallLimit, ownerID)
	if err != nil {
		logger.Log.WithField("owner_id", ownerID).WithError(err).Warn("Memory recall failed")
		return nil
	}

	logger.Log.WithFields(logrus.Fields{
		"owner_id": ownerID,
		"matches":  len(matches),
	}).Debug("Recalled memories")

	return matches
}

// Forget removes a conversation's memory records. Best-effort: failures
// are logged, the caller's delete proceeds regardless.
func (s *Service) Forget(ctx context.Context, ownerID, conversationID string) {
	if err := s.index.PurgeConversation(ctx, ownerID, conversationID); err != nil {
		logger.Log.WithFields(logrus.Fields{
			"owner_id":        ownerID,
			"conversation_id": conversationID,
		}).WithError(err).Warn("Failed to purge conversation memories")
	}
}
