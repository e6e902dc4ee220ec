package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "user-123")
	}
	if claims.IssuedAt.IsZero() {
		t.Error("IssuedAt is zero")
	}
	if time.Since(claims.IssuedAt) > time.Minute {
		t.Errorf("IssuedAt too far in the past: %v", claims.IssuedAt)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	token, err := m.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	_, err = m.Verify(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Verify error = %v, want ErrExpiredToken", err)
	}
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	other := NewManager("different-secret", time.Hour)

	good, err := other.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"wrong signature", good},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Verify(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify(%q) error = %v, want ErrInvalidToken", tt.token, err)
			}
		})
	}
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.Issue("")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := m.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify error = %v, want ErrInvalidToken", err)
	}
}
