package jwtx

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// AlgHS256 is the only signing algorithm the codec produces or accepts.
	AlgHS256 = "HS256"

	// TypJWT is the fixed token type header value.
	TypJWT = "JWT"
)

// Header is the JOSE header of a token. Field order is fixed so the encoded
// header segment is stable for a given algorithm.
type Header struct {
	Typ string `json:"typ"`
	Alg string `json:"alg"`
}

// DefaultHeader returns the header used for every issued token.
func DefaultHeader() Header {
	return Header{Typ: TypJWT, Alg: AlgHS256}
}

// segmentEncoding is unpadded base64url that rejects non-zero trailing bits,
// so every decoded byte string has exactly one valid textual form.
var segmentEncoding = base64.URLEncoding.Strict()

// Encode serializes header and payload, signs them with HMAC-SHA256 under
// secret and returns the compact "h.p.s" form.
func Encode(header Header, payload any, secret []byte) (string, error) {
	if header.Alg != AlgHS256 {
		return "", fmt.Errorf("%w: %q", ErrAlgMismatch, header.Alg)
	}

	hb, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("jwtx: encode header: %w", err)
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("jwtx: encode payload: %w", err)
	}

	signingInput := encodeSegment(hb) + "." + encodeSegment(pb)
	return signingInput + "." + encodeSegment(sign(signingInput, secret)), nil
}

// DecodeAndVerify checks the token signature against secret and, only if it
// matches, unmarshals the payload segment into payload.
//
// The MAC is recomputed over the header and payload segments exactly as they
// were received. Every error returned wraps ErrInvalidToken.
func DecodeAndVerify(token string, secret []byte, payload any) (Header, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Header{}, invalid(ErrMalformed)
	}

	hb, err := decodeSegment(parts[0])
	if err != nil {
		return Header{}, invalid(ErrMalformed)
	}
	var header Header
	if err := json.Unmarshal(hb, &header); err != nil {
		return Header{}, invalid(ErrMalformed)
	}
	if header.Alg != AlgHS256 {
		return Header{}, invalid(ErrAlgMismatch)
	}

	pb, err := decodeSegment(parts[1])
	if err != nil {
		return Header{}, invalid(ErrMalformed)
	}
	sig, err := decodeSegment(parts[2])
	if err != nil {
		return Header{}, invalid(ErrMalformed)
	}
	if !hmac.Equal(sig, sign(parts[0]+"."+parts[1], secret)) {
		return Header{}, invalid(ErrInvalidSig)
	}

	if err := json.Unmarshal(pb, payload); err != nil {
		return Header{}, invalid(ErrInvalidClaim)
	}

	return header, nil
}

func sign(signingInput string, secret []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(signingInput))
	return mac.Sum(nil)
}

func encodeSegment(b []byte) string {
	return strings.TrimRight(segmentEncoding.EncodeToString(b), "=")
}

// decodeSegment restores the "=" padding stripped by encodeSegment before
// decoding. Only the base64url alphabet is accepted: the stdlib decoder
// skips CR and LF, which would let many strings decode to one signature.
// A segment whose length is 1 mod 4 can never be valid and fails in the
// decoder.
func decodeSegment(s string) ([]byte, error) {
	for i := 0; i < len(s); i++ {
		if !isSegmentByte(s[i]) {
			return nil, ErrMalformed
		}
	}
	pad := (4 - len(s)%4) % 4
	return segmentEncoding.DecodeString(s + strings.Repeat("=", pad))
}

func isSegmentByte(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	}
	return c == '-' || c == '_'
}

func invalid(cause error) error {
	return fmt.Errorf("%w: %w", ErrInvalidToken, cause)
}
