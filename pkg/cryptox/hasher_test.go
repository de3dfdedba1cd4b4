package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewKeyedHasher(t *testing.T) {
	_, err := NewKeyedHasher(nil)
	require.Error(t, err)

	h, err := NewKeyedHasher([]byte("server-secret"))
	require.NoError(t, err)
	require.NotNil(t, h)
}

func TestKeyedHasherDigest(t *testing.T) {
	secret := []byte("server-secret")
	h := &KeyedHasher{Secret: secret}

	digest, err := h.Hash("Str0ng_1A")
	require.NoError(t, err)

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte("Str0ng_1A"))
	require.Equal(t, hex.EncodeToString(mac.Sum(nil)), digest)
	require.Len(t, digest, 64)

	again, err := h.Hash("Str0ng_1A")
	require.NoError(t, err)
	require.Equal(t, digest, again, "keyed digests are deterministic")
}

func TestKeyedHasherVerify(t *testing.T) {
	h := &KeyedHasher{Secret: []byte("server-secret")}
	digest, err := h.Hash("Str0ng_1A")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		digest   string
		wantErr  bool
	}{
		{"correct", "Str0ng_1A", digest, false},
		{"wrong password", "wrong", digest, true},
		{"case difference", "str0ng_1a", digest, true},
		{"empty password", "", digest, true},
		{"not hex", "Str0ng_1A", "zz" + digest[2:], true},
		{"truncated digest", "Str0ng_1A", digest[:32], true},
		{"empty digest", "Str0ng_1A", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Verify(tt.password, tt.digest)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMismatch)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestKeyedHasherSecretSensitivity(t *testing.T) {
	digest, err := (&KeyedHasher{Secret: []byte("k1")}).Hash("Str0ng_1A")
	require.NoError(t, err)

	require.ErrorIs(t, (&KeyedHasher{Secret: []byte("k2")}).Verify("Str0ng_1A", digest), ErrMismatch)
}

func TestHashersSatisfyInterface(t *testing.T) {
	var _ Hasher = (*KeyedHasher)(nil)
	var _ Hasher = (*Argon2Hasher)(nil)
}
