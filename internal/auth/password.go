package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/locvowork/task_management_sample/internal/config"
)

// PasswordHasher turns plaintext passwords into stored digests and checks them.
type PasswordHasher interface {
	Digest(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// NewPasswordHasher returns the hasher named by algorithm (see config.PasswordHasher*).
func NewPasswordHasher(algorithm string) (PasswordHasher, error) {
	switch algorithm {
	case "", config.PasswordHasherSHA256:
		return SHA256Hasher{}, nil
	case config.PasswordHasherBcrypt:
		return BcryptHasher{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", algorithm)
	}
}

// SHA256Hasher is an unsalted SHA-256 hex digest. It is deterministic, which keeps
// digests compatible with existing rows, but it is not a password KDF.
type SHA256Hasher struct{}

func (SHA256Hasher) Digest(plaintext string) (string, error) {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:]), nil
}

func (h SHA256Hasher) Verify(plaintext, digest string) bool {
	computed, _ := h.Digest(plaintext)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}

// BcryptHasher is the salted alternative, selected with PASSWORD_HASHER=bcrypt.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Digest(plaintext string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

func (BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
