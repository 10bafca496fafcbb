package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func testBreaker(timeout time.Duration) *CircuitBreaker {
	return New("test", Config{
		MaxRequests:      1,
		Timeout:          timeout,
		FailureThreshold: 2,
		SuccessThreshold: 1,
		Logger:           zap.NewNop(),
	})
}

func fail(cb *CircuitBreaker) error {
	return cb.Execute(context.Background(), func() error {
		return errors.New("boom")
	})
}

func succeed(cb *CircuitBreaker) error {
	return cb.Execute(context.Background(), func() error {
		return nil
	})
}

func TestBreakerStaysClosedOnSuccess(t *testing.T) {
	cb := testBreaker(time.Minute)

	for i := 0; i < 5; i++ {
		if err := succeed(cb); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if cb.State() != StateClosed {
		t.Errorf("expected closed state, got %s", cb.State())
	}
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	cb := testBreaker(time.Minute)

	fail(cb)
	fail(cb)

	if cb.State() != StateOpen {
		t.Fatalf("expected open state, got %s", cb.State())
	}

	err := succeed(cb)
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	cb := testBreaker(10 * time.Millisecond)

	fail(cb)
	fail(cb)
	if cb.State() != StateOpen {
		t.Fatalf("expected open state, got %s", cb.State())
	}

	time.Sleep(20 * time.Millisecond)

	if cb.State() != StateHalfOpen {
		t.Fatalf("expected half-open state, got %s", cb.State())
	}

	if err := succeed(cb); err != nil {
		t.Fatalf("unexpected error in half-open: %v", err)
	}

	if cb.State() != StateClosed {
		t.Errorf("expected closed after recovery, got %s", cb.State())
	}
}

func TestBreakerReopensOnHalfOpenFailure(t *testing.T) {
	cb := testBreaker(10 * time.Millisecond)

	fail(cb)
	fail(cb)
	time.Sleep(20 * time.Millisecond)

	fail(cb)

	if cb.State() != StateOpen {
		t.Errorf("expected open after half-open failure, got %s", cb.State())
	}
}
