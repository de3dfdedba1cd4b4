// Package policy holds the input predicates shared by the account and link
// services. Every predicate is pure and total: it answers true or false for
// any string and never panics.
package policy

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinPasswordLength    = 8
	MinAccountNameLength = 5
	MaxURLLength         = 2048
)

const (
	RoleAdmin   = "admin"
	RoleRegular = "regular"
)

// urlPattern accepts http(s) URLs whose host is a dotted name with a 2 to 6
// letter TLD, localhost, or a dotted-quad IPv4 address.
var urlPattern = regexp.MustCompile(`(?i)^https?://` +
	`(?:www\.)?` +
	`(?:(?:[A-Z0-9](?:[A-Z0-9-]{0,61}[A-Z0-9])?\.)+[A-Z]{2,6}\.?|localhost|\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})` +
	`(?::\d+)?` +
	`(?:/?|[/?]\S+)$`)

// PasswordStrong requires at least MinPasswordLength characters including a
// lowercase letter, an uppercase letter and a digit.
func PasswordStrong(s string) bool {
	if utf8.RuneCountInString(s) < MinPasswordLength {
		return false
	}

	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return lower && upper && digit
}

// AccountNameValid requires at least MinAccountNameLength characters, all
// ASCII letters, digits or underscore.
func AccountNameValid(s string) bool {
	if len(s) < MinAccountNameLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_') {
			return false
		}
	}
	return true
}

// URLValid reports whether s is an acceptable link target.
func URLValid(s string) bool {
	if utf8.RuneCountInString(s) > MaxURLLength {
		return false
	}
	if strings.ContainsAny(s, "<>") {
		return false
	}
	return urlPattern.MatchString(s)
}

// RoleValid reports whether s names a known role.
func RoleValid(s string) bool {
	return s == RoleAdmin || s == RoleRegular
}
