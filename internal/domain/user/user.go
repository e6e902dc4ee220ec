package user

import "time"

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`

	PasswordHash string `json:"-"` // never expose hash in JSON

	// Set on every password mutation, never on creation. Tokens issued
	// before this instant are rejected.
	PasswordChangedAt *time.Time `json:"-"`

	// Outstanding reset secret: hash + expiry are both set or both nil.
	PasswordResetTokenHash *string    `json:"-"`
	PasswordResetExpires   *time.Time `json:"-"`

	// Soft-delete flag; inactive users are invisible to normal lookups.
	Active bool `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateParams struct {
	Name         string
	Email        string
	PasswordHash string
	Role         string
}

// ChangedPasswordAfter reports whether the password was mutated after the
// given token issuance time.
func (u User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}

	return issuedAt.Before(*u.PasswordChangedAt)
}
