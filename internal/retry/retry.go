package retry

import (
	"context"
	"time"

	"chatnex/internal/logger"

	"github.com/sirupsen/logrus"
)

// RetryableFunc reports whether a failure is transient and worth another
// attempt. Anything it rejects is terminal and propagates immediately.
type RetryableFunc func(error) bool

// Policy holds the retry parameters for a class of outbound calls.
// The delay is flat, not exponential, and unjittered.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Retryable   RetryableFunc
}

// Do runs op up to MaxAttempts times, sleeping Delay between attempts
// that fail retryably. The final attempt's error, or any terminal error,
// is returned unchanged. Callers must only wrap operations without
// visible side effects.
func Do[T any](ctx context.Context, policy Policy, op func() (T, error)) (T, error) {
	var zero T

	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		var result T
		result, err = op()
		if err == nil {
			return result, nil
		}

		if attempt == attempts || policy.Retryable == nil || !policy.Retryable(err) {
			return zero, err
		}

		logger.Log.WithFields(logrus.Fields{
			"attempt": attempt,
			"delay":   policy.Delay.String(),
		}).WithError(err).Warn("Transient upstream failure, retrying")

		select {
		case <-time.After(policy.Delay):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}

	return zero, err
}
