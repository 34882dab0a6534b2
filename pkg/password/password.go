package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher performs one-way adaptive salted hashing of user passwords.
// bcrypt embeds the salt in its output, so no separate salt storage is
// needed, and comparison does not leak timing information correlated with
// the position of the first mismatched byte.
type Hasher struct {
	cost int
}

// Option configures a Hasher.
type Option func(*Hasher)

// WithCost overrides the bcrypt cost factor. Higher costs slow hashing
// deliberately; tests use the minimum cost to stay fast.
func WithCost(cost int) Option {
	return func(h *Hasher) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			h.cost = cost
		}
	}
}

// New creates a Hasher with bcrypt's default cost unless overridden.
func New(opts ...Option) *Hasher {
	h := &Hasher{cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hash produces a salted adaptive hash of the plaintext password.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether the plaintext matches the stored hash.
func (h *Hasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
