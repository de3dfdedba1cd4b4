package jwtx

import (
	"time"
)

// DefaultAccessTokenTTL is the lifetime of tokens issued at login.
const DefaultAccessTokenTTL = 24 * time.Hour

// Claims is the complete payload of an access token. Nothing else is
// carried: no issuer, audience or token id.
type Claims struct {
	// Subject is the account identifier (username).
	Subject string `json:"sub"`

	// Role is a single flat role string, "admin" or "regular".
	Role string `json:"role"`

	// ExpiresAt is the expiry as integer seconds since the Unix epoch.
	ExpiresAt int64 `json:"exp"`
}

// NewClaims builds claims expiring ttl after now. A negative ttl yields a
// token that is already expired.
func NewClaims(subject, role string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		Subject:   subject,
		Role:      role,
		ExpiresAt: now.UTC().Add(ttl).Unix(),
	}
}

// Expiry returns the exp claim as a time.
func (c Claims) Expiry() time.Time {
	return time.Unix(c.ExpiresAt, 0).UTC()
}

// ValidateExpiry fails once now has reached exp. A token is never valid at
// the exact second it expires.
func (c Claims) ValidateExpiry(now time.Time) error {
	if c.ExpiresAt <= now.UTC().Unix() {
		return ErrExpired
	}
	return nil
}

// RequireRole fails with ErrForbidden unless the role claim equals role.
func (c Claims) RequireRole(role string) error {
	if c.Role != role {
		return ErrForbidden
	}
	return nil
}
