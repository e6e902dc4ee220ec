package jobs

import "time"

// WelcomeEmailPayload carries everything the worker needs; it never has to
// load the user back from the store.
type WelcomeEmailPayload struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type PasswordChangedEmailPayload struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	ChangedAt time.Time `json:"changedAt"`
}
