package utils

import (
	"testing"
	"time"
)

func TestPostingCursorRoundTrip(t *testing.T) {
	createdAt := time.Date(2026, 6, 1, 12, 30, 0, 0, time.UTC)

	enc, err := EncodePostingCursor(createdAt, "posting-1")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	dec, err := DecodePostingCursor(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !dec.CreatedAt.Equal(createdAt) || dec.ID != "posting-1" {
		t.Errorf("round trip = %+v", dec)
	}
}

func TestDecodePostingCursorRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		cursor string
	}{
		{"empty", ""},
		{"not base64", "!!!"},
		{"not json", "bm90LWpzb24"},
		{"missing fields", "e30"}, // {}
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodePostingCursor(tt.cursor); err == nil {
				t.Errorf("DecodePostingCursor(%q) succeeded, want error", tt.cursor)
			}
		})
	}
}
