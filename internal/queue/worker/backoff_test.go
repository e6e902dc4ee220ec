package worker

import (
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		minWant time.Duration
		maxWant time.Duration // min + jitter ceiling
	}{
		{0, 2 * time.Second, 2*time.Second + 250*time.Millisecond},
		{1, 4 * time.Second, 4*time.Second + 250*time.Millisecond},
		{2, 8 * time.Second, 8*time.Second + 250*time.Millisecond},
		{3, 16 * time.Second, 16*time.Second + 250*time.Millisecond},
		{20, 5 * time.Minute, 5*time.Minute + 250*time.Millisecond},
	}

	for _, tt := range tests {
		got := ExponentialBackoff(tt.attempt)
		if got < tt.minWant || got > tt.maxWant {
			t.Errorf("ExponentialBackoff(%d) = %v, want in [%v, %v]", tt.attempt, got, tt.minWant, tt.maxWant)
		}
	}
}
