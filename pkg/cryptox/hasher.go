package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrMismatch is returned when a password does not match a stored digest.
var ErrMismatch = errors.New("password does not match")

// Hasher turns passwords into storable digests and checks them later.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) error
}

// KeyedHasher stores hex(HMAC-SHA256(Secret, password)).
//
// NOTE: this is a keyed hash, not a password hashing function. There is no
// per-record salt and no work factor, so equal passwords share a digest and
// a leaked secret allows fast offline guessing. Argon2Hasher is the scheme
// to use for anything facing real users.
type KeyedHasher struct {
	Secret []byte
}

func NewKeyedHasher(secret []byte) (*KeyedHasher, error) {
	if len(secret) == 0 {
		return nil, errors.New("cryptox: empty password secret")
	}
	return &KeyedHasher{Secret: secret}, nil
}

func (h *KeyedHasher) Hash(password string) (string, error) {
	return hex.EncodeToString(h.sum(password)), nil
}

// Verify compares in constant time. A digest that is not valid hex is a
// mismatch.
func (h *KeyedHasher) Verify(password, digest string) error {
	want, err := hex.DecodeString(digest)
	if err != nil {
		return ErrMismatch
	}
	if !hmac.Equal(h.sum(password), want) {
		return ErrMismatch
	}
	return nil
}

func (h *KeyedHasher) sum(password string) []byte {
	mac := hmac.New(sha256.New, h.Secret)
	mac.Write([]byte(password))
	return mac.Sum(nil)
}
