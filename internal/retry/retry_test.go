package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	policy := Policy{MaxAttempts: 4, Delay: time.Millisecond, Retryable: func(error) bool { return true }}

	calls := 0
	result, err := Do(context.Background(), policy, func() (string, error) {
		calls++
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("Do() error = %v, want nil", err)
	}
	if result != "ok" {
		t.Errorf("Do() result = %q, want %q", result, "ok")
	}
	if calls != 1 {
		t.Errorf("Do() calls = %d, want 1", calls)
	}
}

func TestDo_SucceedsOnKthAttempt(t *testing.T) {
	transient := errors.New("overloaded")
	policy := Policy{MaxAttempts: 4, Delay: time.Millisecond, Retryable: func(error) bool { return true }}

	calls := 0
	result, err := Do(context.Background(), policy, func() (string, error) {
		calls++
		if calls < 3 {
			return "", transient
		}
		return "recovered", nil
	})

	if err != nil {
		t.Fatalf("Do() error = %v, want nil", err)
	}
	if result != "recovered" {
		t.Errorf("Do() result = %q, want %q", result, "recovered")
	}
	if calls != 3 {
		t.Errorf("Do() calls = %d, want 3", calls)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	transient := errors.New("overloaded")
	policy := Policy{MaxAttempts: 4, Delay: time.Millisecond, Retryable: func(error) bool { return true }}

	calls := 0
	_, err := Do(context.Background(), policy, func() (string, error) {
		calls++
		return "", transient
	})

	if !errors.Is(err, transient) {
		t.Errorf("Do() error = %v, want the final attempt's error", err)
	}
	if calls != 4 {
		t.Errorf("Do() calls = %d, want 4", calls)
	}
}

func TestDo_TerminalErrorNotRetried(t *testing.T) {
	terminal := errors.New("bad request")
	policy := Policy{MaxAttempts: 4, Delay: time.Millisecond, Retryable: func(error) bool { return false }}

	calls := 0
	_, err := Do(context.Background(), policy, func() (string, error) {
		calls++
		return "", terminal
	})

	if !errors.Is(err, terminal) {
		t.Errorf("Do() error = %v, want terminal error unchanged", err)
	}
	if calls != 1 {
		t.Errorf("Do() calls = %d, want 1", calls)
	}
}

func TestDo_NilRetryableNeverRetries(t *testing.T) {
	policy := Policy{MaxAttempts: 4, Delay: time.Millisecond}

	calls := 0
	_, err := Do(context.Background(), policy, func() (int, error) {
		calls++
		return 0, errors.New("boom")
	})

	if err == nil {
		t.Fatal("Do() error = nil, want error")
	}
	if calls != 1 {
		t.Errorf("Do() calls = %d, want 1", calls)
	}
}

func TestDo_ContextCanceledDuringDelay(t *testing.T) {
	policy := Policy{MaxAttempts: 4, Delay: time.Minute, Retryable: func(error) bool { return true }}

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := Do(ctx, policy, func() (string, error) {
		calls++
		return "", errors.New("overloaded")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("Do() calls = %d, want 1", calls)
	}
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	policy := Policy{MaxAttempts: 0, Delay: time.Millisecond}

	calls := 0
	result, err := Do(context.Background(), policy, func() (int, error) {
		calls++
		return 42, nil
	})

	if err != nil {
		t.Fatalf("Do() error = %v, want nil", err)
	}
	if result != 42 || calls != 1 {
		t.Errorf("Do() result = %d calls = %d, want 42 and 1", result, calls)
	}
}
