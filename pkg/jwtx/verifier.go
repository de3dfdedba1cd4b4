package jwtx

import (
	"errors"
)

// Verifier validates a token and gives you back the claims if it's legit.
type Verifier interface {
	Validate(token string) (Claims, error)
}

var (
	// ErrInvalidToken is wrapped by every validation failure. Callers that
	// only need the single "authentication failed" signal check for this.
	ErrInvalidToken = errors.New("jwtx: invalid token")

	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrAlgMismatch  = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
	ErrExpired      = errors.New("jwtx: token expired")

	// ErrForbidden is returned when a valid token lacks the required role.
	ErrForbidden = errors.New("jwtx: insufficient role")
)
