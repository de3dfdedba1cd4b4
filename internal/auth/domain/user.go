package domain

import "time"

const (
	RoleAdmin   = "admin"
	RoleRegular = "regular"
)

type User struct {
	ID             string
	Username       string
	PasswordDigest string // keyed HMAC hex, or argon2 PHC when configured
	Role           string // "admin" or "regular"
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
