package security

import "golang.org/x/crypto/bcrypt"

// Cost is deliberately above bcrypt's default; user passwords are the one
// place we want the hash to be slow.
const Cost = 12

// HashPassword hashes a plain text password with bcrypt.
func HashPassword(plain string) (string, error) {
	return HashPasswordCost(plain, Cost)
}

// HashPasswordCost is the tunable variant; tests use a low cost to stay fast.
func HashPasswordCost(plain string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword reports whether plain matches the stored bcrypt hash.
// Malformed hashes simply fail the check.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
