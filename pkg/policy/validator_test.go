package policy_test

import (
	"testing"

	"github.com/aussiebroadwan/tinylink/pkg/policy"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Username string `json:"username" validate:"required,account_name"`
	Password string `json:"password" validate:"required,strong_password"`
	Role     string `json:"role,omitempty" validate:"omitempty,account_role"`
	URL      string `json:"url,omitempty" validate:"omitempty,link_url"`
}

func TestNewValidator(t *testing.T) {
	v := policy.NewValidator()

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, v.Struct(signup{Username: "valid_user1", Password: "Str0ng_P@ss"}))
	})

	t.Run("valid with role and url", func(t *testing.T) {
		require.NoError(t, v.Struct(signup{
			Username: "valid_user1",
			Password: "Str0ng_P@ss",
			Role:     "admin",
			URL:      "https://example.com",
		}))
	})

	tests := []struct {
		name string
		in   signup
		msg  string
	}{
		{"missing username", signup{Password: "Str0ng_P@ss"}, "username is required"},
		{"bad username", signup{Username: "ab", Password: "Str0ng_P@ss"}, "username must be at least 5"},
		{"weak password", signup{Username: "valid_user1", Password: "password"}, "password must be at least 8"},
		{"bad role", signup{Username: "valid_user1", Password: "Str0ng_P@ss", Role: "root"}, `role must be "admin" or "regular"`},
		{"bad url", signup{Username: "valid_user1", Password: "Str0ng_P@ss", URL: "ftp://x.com"}, "url is not a valid http(s) URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			require.Error(t, err)
			require.Contains(t, policy.Describe(err), tt.msg)
		})
	}
}
