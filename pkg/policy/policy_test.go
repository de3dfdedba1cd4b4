package policy_test

import (
	"strings"
	"testing"

	"github.com/aussiebroadwan/tinylink/pkg/policy"
	"github.com/stretchr/testify/require"
)

func TestPasswordStrong(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"password", false},
		{"Str0ng_P@ss", true},
		{"ALLUPPER1", false},
		{"alllower1", false},
		{"NoDigitsHere", false},
		{"Sh0rt", false},
		{"Abcdefg1", true},
		{"", false},
		{"Пароль1Aa", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, policy.PasswordStrong(tt.in))
		})
	}
}

func TestAccountNameValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"ab", false},
		{"valid_user1", true},
		{"bad name", false},
		{"abcde", true},
		{"abcd", false},
		{"user-name", false},
		{"_____", true},
		{"josé_01", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, policy.AccountNameValid(tt.in))
		})
	}
}

func TestURLValid(t *testing.T) {
	long := "https://example.com/" + strings.Repeat("a", 3000)
	atLimit := "https://example.com/" + strings.Repeat("a", policy.MaxURLLength-len("https://example.com/"))

	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"https", "https://example.com", true},
		{"http with path", "http://example.com/some/path?q=1", true},
		{"uppercase host", "HTTPS://WWW.EXAMPLE.COM", true},
		{"www", "https://www.example.co.uk/", true},
		{"localhost port", "http://localhost:3000/x", true},
		{"ipv4", "http://192.168.0.1:8080", true},
		{"trailing dot", "https://example.com.", true},
		{"at limit", atLimit, true},
		{"ftp scheme", "ftp://example.com", false},
		{"angle bracket", "https://a.com/<script>", false},
		{"closing bracket", "https://a.com/>", false},
		{"too long", long, false},
		{"no scheme", "example.com", false},
		{"no tld", "https://example", false},
		{"long tld", "https://example.toolongtld", false},
		{"hyphen edge", "https://-bad.com", false},
		{"space in path", "https://example.com/a b", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, policy.URLValid(tt.in))
		})
	}
}

func TestRoleValid(t *testing.T) {
	require.True(t, policy.RoleValid("admin"))
	require.True(t, policy.RoleValid("regular"))
	require.False(t, policy.RoleValid("Admin"))
	require.False(t, policy.RoleValid(""))
}
