package auth

import (
	"testing"
	"time"
)

func TestGenerateResetToken(t *testing.T) {
	secret, secretHash, expiresAt, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("GenerateResetToken: %v", err)
	}

	if len(secret) != 64 {
		t.Errorf("secret length = %d, want 64 hex chars", len(secret))
	}
	if secretHash == secret {
		t.Error("stored hash equals the plain secret")
	}
	if HashResetToken(secret) != secretHash {
		t.Error("hash does not match HashResetToken(secret)")
	}

	ttl := time.Until(expiresAt)
	if ttl < 9*time.Minute || ttl > 10*time.Minute {
		t.Errorf("expiry %v from now, want ~10min", ttl)
	}

	secret2, _, _, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("GenerateResetToken: %v", err)
	}
	if secret2 == secret {
		t.Error("two generated secrets are identical")
	}
}

func TestResetTokenValid(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	secret := "a-presented-secret"
	hash := HashResetToken(secret)

	tests := []struct {
		name      string
		presented string
		hash      string
		expiry    time.Time
		want      bool
	}{
		{"valid with time to spare", secret, hash, now.Add(5 * time.Minute), true},
		{"valid one second before expiry", secret, hash, now.Add(time.Second), true},
		{"expired exactly at boundary", secret, hash, now, false},
		{"expired one second past", secret, hash, now.Add(-time.Second), false},
		{"wrong secret", "some-other-secret", hash, now.Add(5 * time.Minute), false},
		{"no stored hash", secret, "", now.Add(5 * time.Minute), false},
		{"zero expiry", secret, hash, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResetTokenValid(tt.presented, tt.hash, tt.expiry, now); got != tt.want {
				t.Errorf("ResetTokenValid() = %v, want %v", got, tt.want)
			}
		})
	}
}
