package mail

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestProtectedMailerPassesThrough(t *testing.T) {
	pm := NewProtectedMailer(NewLogMailer(), ProtectedMailerConfig{})

	if err := pm.Send(context.Background(), Message{To: "a@example.com", Subject: "hi"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func TestProtectedMailerOpensAfterThreshold(t *testing.T) {
	inner := &LogMailer{FailSends: true}
	pm := NewProtectedMailer(inner, ProtectedMailerConfig{
		FailureThreshold: 2,
		Cooldown:         time.Minute,
	})

	msg := Message{To: "a@example.com"}

	// Failures below the threshold surface the provider error.
	for i := 0; i < 2; i++ {
		err := pm.Send(context.Background(), msg)
		if err == nil || errors.Is(err, ErrCircuitOpen) {
			t.Fatalf("send %d: err = %v, want provider error", i, err)
		}
	}

	// Circuit is now open: fail fast without touching the provider.
	if err := pm.Send(context.Background(), msg); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}
}

func TestProtectedMailerHalfOpenRecovery(t *testing.T) {
	inner := &LogMailer{FailSends: true}
	pm := NewProtectedMailer(inner, ProtectedMailerConfig{
		FailureThreshold: 1,
		Cooldown:         10 * time.Millisecond,
	})

	msg := Message{To: "a@example.com"}

	if err := pm.Send(context.Background(), msg); err == nil {
		t.Fatal("expected provider error")
	}
	if err := pm.Send(context.Background(), msg); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}

	// After the cooldown the provider has recovered; the half-open trial
	// succeeds and closes the circuit again.
	inner.FailSends = false
	time.Sleep(20 * time.Millisecond)

	if err := pm.Send(context.Background(), msg); err != nil {
		t.Fatalf("half-open trial: %v", err)
	}
	if err := pm.Send(context.Background(), msg); err != nil {
		t.Fatalf("closed again: %v", err)
	}
}

func TestProtectedMailerTimeout(t *testing.T) {
	inner := &LogMailer{Delay: time.Second}
	pm := NewProtectedMailer(inner, ProtectedMailerConfig{Timeout: 10 * time.Millisecond})

	err := pm.Send(context.Background(), Message{To: "a@example.com"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want context.DeadlineExceeded", err)
	}
}
