//go:build e2e

package tinylink_test

import (
	"testing"

	"github.com/aussiebroadwan/tinylink/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitLogin verifies the strict limit on the login endpoint.
func TestRateLimitLogin(t *testing.T) {
	baseURL, cleanup := setupContainerWithDefaultRateLimits(t)
	defer cleanup()

	client := authsdk.NewClient(baseURL)

	var lastErr error
	for i := range 6 {
		_, err := client.Login(t.Context(), "nobody_here", "Wr0ngPassword")
		require.Error(t, err)
		if i < 5 {
			require.ErrorIs(t, err, authsdk.ErrInvalidCredentials, "request %d should not be rate limited", i+1)
			continue
		}
		lastErr = err
	}

	var apiErr *authsdk.APIError
	require.ErrorAs(t, lastErr, &apiErr)
	require.Equal(t, 429, apiErr.StatusCode)
	require.Equal(t, authsdk.ErrorCodeRateLimited, apiErr.Code)
}
