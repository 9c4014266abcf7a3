// Package auth guards the admin endpoints. The admin key is only ever held
// as an argon2id digest in PHC string form.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrInvalidHash is returned for anything that is not an argon2id digest
// this package can verify.
var ErrInvalidHash = errors.New("invalid argon2id hash")

// Params tunes argon2id. Memory is in KiB.
type Params struct {
	Memory  uint32
	Time    uint32
	Threads uint8
	SaltLen uint32
	KeyLen  uint32
}

// DefaultParams is what the server and cmd/hashkey hash with.
var DefaultParams = Params{
	Memory:  64 * 1024,
	Time:    3,
	Threads: defaultThreads(),
	SaltLen: 16,
	KeyLen:  32,
}

func defaultThreads() uint8 {
	n := runtime.NumCPU() / 2
	if n < 1 {
		return 1
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}

var b64 = base64.RawStdEncoding

// digest is a decoded $argon2id$v=19$m=..,t=..,p=..$salt$key string.
type digest struct {
	params Params
	salt   []byte
	key    []byte
}

func (d digest) String() string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, d.params.Memory, d.params.Time, d.params.Threads,
		b64.EncodeToString(d.salt), b64.EncodeToString(d.key))
}

// matches derives a key from secret with d's salt and parameters and
// compares it in constant time.
func (d digest) matches(secret string) bool {
	got := argon2.IDKey([]byte(secret), d.salt, d.params.Time, d.params.Memory, d.params.Threads, d.params.KeyLen)
	return subtle.ConstantTimeCompare(d.key, got) == 1
}

func parseDigest(encoded string) (digest, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return digest{}, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return digest{}, fmt.Errorf("%w: bad version field", ErrInvalidHash)
	}
	if version != argon2.Version {
		return digest{}, fmt.Errorf("%w: version %d, want %d", ErrInvalidHash, version, argon2.Version)
	}

	var d digest
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &d.params.Memory, &d.params.Time, &d.params.Threads); err != nil {
		return digest{}, fmt.Errorf("%w: bad parameter field", ErrInvalidHash)
	}

	var err error
	if d.salt, err = b64.Strict().DecodeString(parts[4]); err != nil {
		return digest{}, fmt.Errorf("%w: salt: %v", ErrInvalidHash, err)
	}
	if d.key, err = b64.Strict().DecodeString(parts[5]); err != nil || len(d.key) == 0 {
		return digest{}, fmt.Errorf("%w: key", ErrInvalidHash)
	}
	d.params.SaltLen = uint32(len(d.salt))
	d.params.KeyLen = uint32(len(d.key))
	return d, nil
}

// CreateHash salts and hashes secret, returning the encoded digest.
func CreateHash(secret string, p Params) (string, error) {
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to read salt: %w", err)
	}
	d := digest{params: p, salt: salt}
	d.key = argon2.IDKey([]byte(secret), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return d.String(), nil
}

// CompareHash reports whether secret hashes to encoded.
func CompareHash(secret, encoded string) (bool, error) {
	d, err := parseDigest(encoded)
	if err != nil {
		return false, err
	}
	return d.matches(secret), nil
}
