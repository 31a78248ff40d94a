// Package auth covers password hashing and token issuance/verification.
package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/dangmn/chatline/internal/domain"
)

// HashPassword hashes a plaintext password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	if len(password) == 0 {
		return "", domain.ErrPasswordEmpty
	}
	if len(password) > domain.MaxPasswordLen {
		return "", domain.ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
