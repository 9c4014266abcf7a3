package auth

import (
	"errors"
	"fmt"
)

// ErrNoAdminKey is returned when neither a key nor a hash is configured.
var ErrNoAdminKey = errors.New("admin key is not configured")

// AdminKey verifies admin credentials. The plaintext key is never retained.
type AdminKey struct {
	d digest
}

// NewAdminKey hashes a plaintext secret with a fresh salt.
func NewAdminKey(secret string) (*AdminKey, error) {
	return newAdminKey(secret, DefaultParams)
}

func newAdminKey(secret string, p Params) (*AdminKey, error) {
	if secret == "" {
		return nil, ErrNoAdminKey
	}
	encoded, err := CreateHash(secret, p)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin key: %w", err)
	}
	return AdminKeyFromHash(encoded)
}

// AdminKeyFromHash uses a pre-computed encoded hash, e.g. from ADMIN_KEY_HASH.
func AdminKeyFromHash(encoded string) (*AdminKey, error) {
	if encoded == "" {
		return nil, ErrNoAdminKey
	}
	d, err := parseDigest(encoded)
	if err != nil {
		return nil, err
	}
	return &AdminKey{d: d}, nil
}

// Verify reports whether candidate is the admin key. Empty candidates never
// match.
func (k *AdminKey) Verify(candidate string) bool {
	if k == nil || candidate == "" {
		return false
	}
	return k.d.matches(candidate)
}
