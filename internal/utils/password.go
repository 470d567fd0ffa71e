package utils

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with bcrypt's default cost.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a plaintext password with a bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateRandomCode returns n decimal digits from crypto/rand, used for
// email verification codes.
func GenerateRandomCode(n int) string {
	const digits = "0123456789"
	var b strings.Builder
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			// crypto/rand only fails when the platform source is broken
			b.WriteByte('0')
			continue
		}
		b.WriteByte(digits[idx.Int64()])
	}
	return b.String()
}

// GenerateInviteCode mints an opaque invitation token.
func GenerateInviteCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
