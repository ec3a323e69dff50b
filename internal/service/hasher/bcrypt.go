package hasher

import (
	"crypto/sha256"

	"golang.org/x/crypto/bcrypt"
)

// Interface to create or compare salted one-way hashes of secrets (passwords, refresh tokens)
type Hasher interface {
	// Generate hash from raw secret
	Hash(raw string) (string, error)

	// Compare known hash and user provided secret
	// Must be protected against timing attacks
	Compare(hashed string, raw string) error
}

// Hasher used if user not provide it's own
var Default = Bcrypt{}

// Bcrypt hasher
// Secret is pre-hashed with sha256 cause bcrypt accepts at most 72 bytes and JWT refresh tokens are longer
type Bcrypt struct {
	// bcrypt cost, bcrypt.DefaultCost if zero
	Cost int
}

func (h Bcrypt) Hash(raw string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	sum := sha256.Sum256([]byte(raw))
	hash, err := bcrypt.GenerateFromPassword(sum[:], cost)
	return string(hash), err
}

func (h Bcrypt) Compare(hashed string, raw string) error {
	sum := sha256.Sum256([]byte(raw))
	return bcrypt.CompareHashAndPassword([]byte(hashed), sum[:])
}
