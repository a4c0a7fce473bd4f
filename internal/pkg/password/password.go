package password

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/s21platform/chat-server/internal/pkg/apperr"
)

const bcryptCost = 12

// Hash produces a salted one-way hash of the plaintext password.
func Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", apperr.Internal("failed to hash password", err)
	}
	return string(hashed), nil
}

// Verify reports whether plain matches the stored hash.
func Verify(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
