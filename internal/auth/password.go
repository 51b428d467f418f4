package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordLength is bcrypt's input limit in bytes. Longer passwords are
// truncated identically on the hash and verify paths, so verification of a
// long password remains consistent with its stored digest.
const MaxPasswordLength = 72

// HashPassword hashes a plaintext password with bcrypt. Each call embeds a
// fresh salt, so two hashes of the same password differ.
func HashPassword(password string) (string, error) {
	if len(password) == 0 {
		return "", errors.New("auth: password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword(truncate(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored bcrypt digest.
// Mismatches return false, never an error.
func VerifyPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), truncate(password)) == nil
}

func truncate(password string) []byte {
	b := []byte(password)
	if len(b) > MaxPasswordLength {
		b = b[:MaxPasswordLength]
	}
	return b
}
