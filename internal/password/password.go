// Package password hashes and verifies account passwords.
//
// Digests are self-describing: argon2id digests start with "$argon2id$" and
// bcrypt digests with "$2". Verify dispatches on that prefix, so accounts
// hashed with either algorithm keep working whichever one is configured for
// new hashes.
package password

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

var ErrUnknownAlgorithm = errors.New("unknown password hashing algorithm")

type Hasher interface {
	// Hash returns a salted one-way digest of plaintext. Two calls with the
	// same input return different digests.
	Hash(plaintext string) (string, error)

	// Verify reports whether plaintext matches digest. It returns false for
	// malformed digests instead of failing.
	Verify(plaintext, digest string) bool
}

type argon2idHasher struct {
	params *argon2id.Params
}

func NewArgon2id(params *argon2id.Params) Hasher {
	if params == nil {
		params = argon2id.DefaultParams
	}
	return argon2idHasher{params: params}
}

func (h argon2idHasher) Hash(plaintext string) (string, error) {
	digest, err := argon2id.CreateHash(plaintext, h.params)
	if err != nil {
		return "", fmt.Errorf("failed to create argon2id hash: %w", err)
	}
	return digest, nil
}

func (argon2idHasher) Verify(plaintext, digest string) bool {
	return verify(plaintext, digest)
}

type bcryptHasher struct {
	cost int
}

func NewBcrypt(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return bcryptHasher{cost: cost}
}

func (h bcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword(bcryptKey(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to create bcrypt hash: %w", err)
	}
	return string(digest), nil
}

func (bcryptHasher) Verify(plaintext, digest string) bool {
	return verify(plaintext, digest)
}

// bcryptMaxKeyLen is the most bcrypt reads from a password.
const bcryptMaxKeyLen = 72

// bcryptKey truncates plaintext to what bcrypt reads. Digests of longer
// passwords written by other bcrypt implementations were made the same way.
func bcryptKey(plaintext string) []byte {
	key := []byte(plaintext)
	if len(key) > bcryptMaxKeyLen {
		key = key[:bcryptMaxKeyLen]
	}
	return key
}

// New returns the hasher for the named algorithm.
func New(algorithm string, bcryptCost int) (Hasher, error) {
	switch algorithm {
	case "argon2id":
		return NewArgon2id(nil), nil
	case "bcrypt":
		return NewBcrypt(bcryptCost), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, algorithm)
	}
}

func verify(plaintext, digest string) bool {
	switch {
	case strings.HasPrefix(digest, "$argon2id$"):
		// Both libraries compare in constant time.
		match, err := argon2id.ComparePasswordAndHash(plaintext, digest)
		return err == nil && match
	case strings.HasPrefix(digest, "$2"):
		return bcrypt.CompareHashAndPassword([]byte(digest), bcryptKey(plaintext)) == nil
	default:
		return false
	}
}
