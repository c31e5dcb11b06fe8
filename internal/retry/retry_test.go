package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), testPolicy(), func(context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_TransientThenSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), testPolicy(), func(context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("busy")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestDo_AllAttemptsFail(t *testing.T) {
	calls := 0
	want := errors.New("down")
	err := Do(context.Background(), testPolicy(), func(context.Context) error {
		calls++
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_PermanentNotRetried(t *testing.T) {
	calls := 0
	want := errors.New("bad input")
	err := Do(context.Background(), testPolicy(), func(context.Context) error {
		calls++
		return Permanent(want)
	})
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_RetryableHook(t *testing.T) {
	calls := 0
	p := testPolicy()
	p.Retryable = func(error) bool { return false }
	_ = Do(context.Background(), p, func(context.Context) error {
		calls++
		return errors.New("x")
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_ContextCanceledStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := Do(ctx, testPolicy(), func(ctx context.Context) error {
		calls++
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestValue(t *testing.T) {
	calls := 0
	v, err := Value(context.Background(), testPolicy(), func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("flaky")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 42 {
		t.Errorf("v = %d, want 42", v)
	}
}

func TestBackoff_CappedAtMaxDelay(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxDelay: 2 * time.Second, Multiplier: 10}
	for attempt := range 5 {
		// MaxDelay plus 20% jitter.
		if d := p.Backoff(attempt); d > 2400*time.Millisecond {
			t.Errorf("Backoff(%d) = %s, exceeds cap", attempt, d)
		}
	}
}

func TestDelay_WaitHookOverridesBackoff(t *testing.T) {
	hint := errors.New("slow down")
	p := Policy{
		BaseDelay: time.Hour,
		Wait: func(err error) time.Duration {
			if errors.Is(err, hint) {
				return time.Millisecond
			}
			return 0
		},
	}
	if d := p.delay(0, hint); d != time.Millisecond {
		t.Errorf("delay = %s, want 1ms", d)
	}
	if d := p.delay(0, errors.New("other")); d < 48*time.Minute {
		t.Errorf("delay = %s, want backoff", d)
	}
}
