package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"
)

// ResetTokenTTL is how long a password-reset secret stays usable.
const ResetTokenTTL = 10 * time.Minute

// GenerateResetToken produces a one-time password-reset secret. The secret
// goes to the user out of band exactly once; only the hash is stored.
func GenerateResetToken() (secret string, secretHash string, expiresAt time.Time, err error) {
	buf := make([]byte, 32)

	if _, err = rand.Read(buf); err != nil {
		return "", "", time.Time{}, err
	}

	secret = hex.EncodeToString(buf)

	return secret, HashResetToken(secret), time.Now().UTC().Add(ResetTokenTTL), nil
}

// HashResetToken is a fast deterministic hash, NOT bcrypt. The secret is
// already high entropy, and the hash doubles as the lookup key in the store.
func HashResetToken(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// ResetTokenValid checks a presented secret against the stored hash and
// expiry. Clearing the stored fields after a successful reset (single use)
// is the caller's responsibility.
func ResetTokenValid(presented, storedHash string, storedExpiry time.Time, now time.Time) bool {
	if storedHash == "" || storedExpiry.IsZero() {
		return false
	}

	if !now.Before(storedExpiry) {
		return false
	}

	presentedHash := HashResetToken(presented)

	return subtle.ConstantTimeCompare([]byte(presentedHash), []byte(storedHash)) == 1
}
