package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/tinylink/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewTokenService(t *testing.T) {
	_, err := jwtx.NewTokenService(nil, time.Hour)
	require.Error(t, err)

	svc, err := jwtx.NewTokenService(testSecret, 0)
	require.NoError(t, err)
	require.Equal(t, jwtx.DefaultAccessTokenTTL, svc.TTL)
}

func TestIssueAndValidate(t *testing.T) {
	token, err := jwtx.Issue("alice_01", "admin", testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := jwtx.Validate(token, testSecret)
	require.NoError(t, err)
	require.Equal(t, "alice_01", claims.Subject)
	require.Equal(t, "admin", claims.Role)
	require.Greater(t, claims.ExpiresAt, time.Now().Unix())
}

func TestValidateRejectsExpired(t *testing.T) {
	token, err := jwtx.Issue("bob_smith", "regular", testSecret, -time.Second)
	require.NoError(t, err)

	_, err = jwtx.Validate(token, testSecret)
	require.ErrorIs(t, err, jwtx.ErrExpired)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
}

func TestValidateKeySensitivity(t *testing.T) {
	token, err := jwtx.Issue("carol", "regular", []byte("k1"), time.Hour)
	require.NoError(t, err)

	_, err = jwtx.Validate(token, []byte("k2"))
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
}

func TestValidateRejectsWhitespaceInSegments(t *testing.T) {
	token, err := jwtx.Issue("alice12", "regular", testSecret, time.Hour)
	require.NoError(t, err)

	sigStart := strings.LastIndex(token, ".") + 1
	for _, ws := range []string{"\r\n\r\n", "\n", "\r", " ", "\t"} {
		mutated := token[:sigStart+4] + ws + token[sigStart+4:]
		claims, err := jwtx.Validate(mutated, testSecret)
		require.ErrorIs(t, err, jwtx.ErrMalformed, "%q", ws)
		require.ErrorIs(t, err, jwtx.ErrInvalidToken)
		require.Empty(t, claims.Subject)
	}
}

func TestValidateRequiresSubject(t *testing.T) {
	token, err := jwtx.Issue("", "regular", testSecret, time.Hour)
	require.NoError(t, err)

	_, err = jwtx.Validate(token, testSecret)
	require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
}

func TestTokenServiceClock(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := &jwtx.TokenService{
		Secret: testSecret,
		TTL:    time.Minute,
		Now:    func() time.Time { return now },
	}

	token, err := svc.Issue("dave", "regular")
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	require.Equal(t, now.Add(time.Minute).Unix(), claims.ExpiresAt)

	now = now.Add(59 * time.Second)
	_, err = svc.Validate(token)
	require.NoError(t, err)

	now = now.Add(time.Second)
	_, err = svc.Validate(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestIssueWithTTLOverridesDefault(t *testing.T) {
	svc, err := jwtx.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)

	token, err := svc.IssueWithTTL("erin", "regular", -time.Second)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

// Tokens must interoperate with a mainstream JWT implementation in both
// directions.
func TestInteropWithGolangJWT(t *testing.T) {
	t.Run("issued here, parsed by golang-jwt", func(t *testing.T) {
		token, err := jwtx.Issue("frank", "admin", testSecret, time.Hour)
		require.NoError(t, err)

		parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) {
			return testSecret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
		require.NoError(t, err)
		require.True(t, parsed.Valid)

		mc, ok := parsed.Claims.(jwt.MapClaims)
		require.True(t, ok)
		require.Equal(t, "frank", mc["sub"])
		require.Equal(t, "admin", mc["role"])
		require.Equal(t, "JWT", parsed.Header["typ"])
	})

	t.Run("issued by golang-jwt, validated here", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).Unix()
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":  "grace",
			"role": "regular",
			"exp":  exp,
		}).SignedString(testSecret)
		require.NoError(t, err)

		claims, err := jwtx.Validate(token, testSecret)
		require.NoError(t, err)
		require.Equal(t, jwtx.Claims{Subject: "grace", Role: "regular", ExpiresAt: exp}, claims)
	})

	t.Run("golang-jwt rejects a different key", func(t *testing.T) {
		token, err := jwtx.Issue("heidi", "regular", testSecret, time.Hour)
		require.NoError(t, err)

		_, err = jwt.Parse(token, func(*jwt.Token) (any, error) {
			return []byte("other"), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		require.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})
}
