package jwtx

import (
	"errors"
	"time"
)

// Signer is anything that can mint access tokens.
type Signer interface {
	Issue(subject, role string) (string, error)
}

// TokenService issues and validates HS256 access tokens under one shared
// secret. It satisfies both Signer and Verifier.
type TokenService struct {
	Secret []byte
	TTL    time.Duration

	// Now is the clock used for exp. Nil means time.Now.
	Now func() time.Time
}

// NewTokenService returns a TokenService using DefaultAccessTokenTTL when
// ttl is zero.
func NewTokenService(secret []byte, ttl time.Duration) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwtx: empty signing secret")
	}
	if ttl == 0 {
		ttl = DefaultAccessTokenTTL
	}
	return &TokenService{Secret: secret, TTL: ttl}, nil
}

// Issue mints a token for subject with the service TTL.
func (s *TokenService) Issue(subject, role string) (string, error) {
	return s.IssueWithTTL(subject, role, s.TTL)
}

// IssueWithTTL mints a token expiring ttl from now.
func (s *TokenService) IssueWithTTL(subject, role string, ttl time.Duration) (string, error) {
	return Encode(DefaultHeader(), NewClaims(subject, role, ttl, s.now()), s.Secret)
}

// Validate verifies the signature and then the expiry.
func (s *TokenService) Validate(token string) (Claims, error) {
	return validateAt(token, s.Secret, s.now())
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Issue mints a token for subject and role signed with secret.
func Issue(subject, role string, secret []byte, ttl time.Duration) (string, error) {
	return Encode(DefaultHeader(), NewClaims(subject, role, ttl, time.Now()), secret)
}

// Validate verifies token against secret and rejects it once expired.
func Validate(token string, secret []byte) (Claims, error) {
	return validateAt(token, secret, time.Now())
}

func validateAt(token string, secret []byte, now time.Time) (Claims, error) {
	var claims Claims
	if _, err := DecodeAndVerify(token, secret, &claims); err != nil {
		return Claims{}, err
	}
	if claims.Subject == "" {
		return Claims{}, invalid(ErrInvalidClaim)
	}
	if err := claims.ValidateExpiry(now); err != nil {
		return Claims{}, invalid(err)
	}
	return claims, nil
}
