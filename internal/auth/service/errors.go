package service

import (
	"errors"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("already exists")
	ErrNotFound     = errors.New("not found")

	// ErrUnauthorized covers both an unknown username and a wrong password.
	// Callers must not be able to tell the two apart.
	ErrUnauthorized = errors.New("invalid credentials")
	ErrForbidden    = errors.New("forbidden")

	// ErrCodeSpaceExhausted means no free short code was found even at the
	// longest allowed length.
	ErrCodeSpaceExhausted = errors.New("short code space exhausted")
)

// LinkExistsError is returned when the URL being shortened already has a
// code. It matches ErrConflict with errors.Is.
type LinkExistsError struct {
	Code string
}

func (e *LinkExistsError) Error() string { return "url already shortened as " + e.Code }

func (e *LinkExistsError) Is(target error) bool { return target == ErrConflict }
