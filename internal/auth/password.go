package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrFailedToHashPassword is returned when the hasher cannot produce a digest.
var ErrFailedToHashPassword = errors.New("failed to hash password")

// PasswordHasher produces and verifies salted one-way password digests.
// The cost factor is fixed at construction and deliberately non-trivial;
// it is the work factor against brute force.
type PasswordHasher struct {
	cost int

	// dummyDigest is a digest of an unguessable throwaway value at the
	// same cost as real digests, compared against when a login subject
	// does not exist so the unknown-email and wrong-password paths burn
	// identical hashing work.
	dummyDigest string
}

// NewPasswordHasher creates a PasswordHasher with the given bcrypt cost.
// Costs outside bcrypt's supported range fall back to the default cost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("unitasks-timing-equalizer"), cost)
	if err != nil {
		// unreachable: the cost is already clamped to bcrypt's range
		panic(err)
	}
	return &PasswordHasher{cost: cost, dummyDigest: string(dummy)}
}

// Hash returns a salted digest of the plaintext. The salt is random per
// call, so the same plaintext yields different digests across calls.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToHashPassword, err)
	}
	return string(digest), nil
}

// Verify reports whether the plaintext matches the digest. A malformed
// digest is a verification failure, never an error that aborts the caller.
// The underlying comparison is constant-time.
func (h *PasswordHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// VerifyDummy performs a digest comparison against the hasher's throwaway
// digest and always reports failure.
func (h *PasswordHasher) VerifyDummy(plaintext string) bool {
	bcrypt.CompareHashAndPassword([]byte(h.dummyDigest), []byte(plaintext))
	return false
}
