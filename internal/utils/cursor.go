package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

// PostingCursor is an opaque keyset cursor over (created_at DESC, id DESC).
type PostingCursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
}

func EncodePostingCursor(createdAt time.Time, id string) (string, error) {
	b, err := json.Marshal(PostingCursor{CreatedAt: createdAt, ID: id})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodePostingCursor(cursor string) (PostingCursor, error) {
	if cursor == "" {
		return PostingCursor{}, errors.New("empty cursor")
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return PostingCursor{}, err
	}

	var c PostingCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return PostingCursor{}, err
	}
	if c.ID == "" || c.CreatedAt.IsZero() {
		return PostingCursor{}, errors.New("invalid cursor payload")
	}
	return c, nil
}
