package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/tinylink/internal/auth/domain"
	"github.com/aussiebroadwan/tinylink/internal/auth/service"
	"github.com/aussiebroadwan/tinylink/internal/auth/store"
	"github.com/aussiebroadwan/tinylink/internal/auth/store/drivers/memory"
	"github.com/aussiebroadwan/tinylink/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/tinylink/pkg/cryptox"
	"github.com/aussiebroadwan/tinylink/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var (
	passwordSecret = []byte("password-secret")
	tokenSecret    = []byte("token-secret")
)

func newUserService(t *testing.T, s store.Store) *service.UserService {
	t.Helper()

	tokens, err := jwtx.NewTokenService(tokenSecret, time.Hour)
	require.NoError(t, err)

	return &service.UserService{
		Store:  s,
		Hasher: &cryptox.KeyedHasher{Secret: passwordSecret},
		Tokens: tokens,
	}
}

func newSQLiteStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCredentialFlow(t *testing.T) {
	stores := map[string]func(t *testing.T) store.Store{
		"memory": func(*testing.T) store.Store { return memory.NewStore() },
		"sqlite": newSQLiteStore,
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			svc := newUserService(t, newStore(t))

			u, err := svc.CreateAccount(ctx, "alice12", "Str0ng_1A", "regular")
			require.NoError(t, err)
			require.Equal(t, "alice12", u.Username)
			require.NotEmpty(t, u.ID)
			require.NotEqual(t, "Str0ng_1A", u.PasswordDigest)

			_, err = svc.CreateAccount(ctx, "alice12", "Str0ng_1A", "regular")
			require.ErrorIs(t, err, service.ErrConflict)

			_, err = svc.VerifyAccount(ctx, "alice12", "wrong")
			require.ErrorIs(t, err, service.ErrUnauthorized)

			got, err := svc.VerifyAccount(ctx, "alice12", "Str0ng_1A")
			require.NoError(t, err)
			require.Equal(t, domain.RoleRegular, got.Role)
		})
	}
}

func TestCreateAccountValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newUserService(t, memory.NewStore())

	tests := []struct {
		name     string
		username string
		password string
		role     string
	}{
		{"short username", "ab", "Str0ng_1A", ""},
		{"username with space", "bad name", "Str0ng_1A", ""},
		{"weak password", "valid_user1", "password", ""},
		{"no lowercase", "valid_user1", "ALLUPPER1", ""},
		{"unknown role", "valid_user1", "Str0ng_1A", "root"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateAccount(ctx, tt.username, tt.password, tt.role)
			require.ErrorIs(t, err, service.ErrInvalidInput)
		})
	}

	n, err := svc.Store.Users().CountUsers(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestCreateAccountDefaultsToRegular(t *testing.T) {
	t.Parallel()
	svc := newUserService(t, memory.NewStore())

	u, err := svc.CreateAccount(context.Background(), "bob_smith", "Str0ng_1A", "")
	require.NoError(t, err)
	require.Equal(t, domain.RoleRegular, u.Role)
}

func TestCreateAccountConcurrent(t *testing.T) {
	t.Parallel()
	svc := newUserService(t, memory.NewStore())

	var created, conflicts atomic.Int32
	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateAccount(context.Background(), "contended", "Str0ng_1A", "regular")
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, service.ErrConflict):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, created.Load())
	require.EqualValues(t, 31, conflicts.Load())
}

func TestVerifyAccountNoEnumeration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newUserService(t, memory.NewStore())

	_, err := svc.CreateAccount(ctx, "carol_1", "Str0ng_1A", "")
	require.NoError(t, err)

	_, unknownErr := svc.VerifyAccount(ctx, "nobody_here", "Str0ng_1A")
	_, wrongErr := svc.VerifyAccount(ctx, "carol_1", "Wr0ng_pass")

	require.ErrorIs(t, unknownErr, service.ErrUnauthorized)
	require.ErrorIs(t, wrongErr, service.ErrUnauthorized)
	require.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestRotatePassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newUserService(t, memory.NewStore())

	_, err := svc.CreateAccount(ctx, "dave_01", "Str0ng_1A", "")
	require.NoError(t, err)

	t.Run("wrong old password", func(t *testing.T) {
		require.ErrorIs(t, svc.RotatePassword(ctx, "dave_01", "nope", "N3w_Passw0rd"), service.ErrUnauthorized)
	})

	t.Run("unknown user", func(t *testing.T) {
		require.ErrorIs(t, svc.RotatePassword(ctx, "ghost", "Str0ng_1A", "N3w_Passw0rd"), service.ErrUnauthorized)
	})

	t.Run("weak new password", func(t *testing.T) {
		require.ErrorIs(t, svc.RotatePassword(ctx, "dave_01", "Str0ng_1A", "weak"), service.ErrInvalidInput)

		_, err := svc.VerifyAccount(ctx, "dave_01", "Str0ng_1A")
		require.NoError(t, err, "old password must still work")
	})

	t.Run("success", func(t *testing.T) {
		require.NoError(t, svc.RotatePassword(ctx, "dave_01", "Str0ng_1A", "N3w_Passw0rd"))

		_, err := svc.VerifyAccount(ctx, "dave_01", "Str0ng_1A")
		require.ErrorIs(t, err, service.ErrUnauthorized)
		_, err = svc.VerifyAccount(ctx, "dave_01", "N3w_Passw0rd")
		require.NoError(t, err)
	})
}

func TestRotatePasswordConcurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newUserService(t, memory.NewStore())

	_, err := svc.CreateAccount(ctx, "erin_01", "Str0ng_1A", "")
	require.NoError(t, err)

	var won atomic.Int32
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			next := "N3w_Passw0rd" + string(rune('a'+i))
			if svc.RotatePassword(ctx, "erin_01", "Str0ng_1A", next) == nil {
				won.Add(1)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, won.Load())
}

func TestLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newUserService(t, memory.NewStore())

	_, err := svc.CreateAccount(ctx, "frank_1", "Str0ng_1A", "admin")
	require.NoError(t, err)

	token, u, err := svc.Login(ctx, "frank_1", "Str0ng_1A")
	require.NoError(t, err)
	require.Equal(t, "frank_1", u.Username)

	claims, err := jwtx.Validate(token, tokenSecret)
	require.NoError(t, err)
	require.Equal(t, "frank_1", claims.Subject)
	require.Equal(t, "admin", claims.Role)
	require.NoError(t, claims.RequireRole("admin"))

	_, _, err = svc.Login(ctx, "frank_1", "bad")
	require.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestEnsureAdmin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newUserService(t, memory.NewStore())

	require.NoError(t, svc.EnsureAdmin(ctx, "root_admin", "Str0ng_1A"))
	require.NoError(t, svc.EnsureAdmin(ctx, "root_admin", "Str0ng_1A"), "second call is a no-op")

	u, err := svc.VerifyAccount(ctx, "root_admin", "Str0ng_1A")
	require.NoError(t, err)
	require.True(t, u.IsAdmin())

	require.ErrorIs(t, svc.EnsureAdmin(ctx, "root_admin2", "weak"), service.ErrInvalidInput)
}

func TestNeedsBootstrap(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newUserService(t, memory.NewStore())

	empty, err := svc.NeedsBootstrap(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	_, err = svc.CreateAccount(ctx, "first_user", "Str0ng_1A", "")
	require.NoError(t, err)

	empty, err = svc.NeedsBootstrap(ctx)
	require.NoError(t, err)
	require.False(t, empty)
}

func TestArgon2Hasher(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newUserService(t, memory.NewStore())
	svc.Hasher = &cryptox.Argon2Hasher{Pepper: "pepper"}

	_, err := svc.CreateAccount(ctx, "grace_1", "Str0ng_1A", "")
	require.NoError(t, err)
	require.NoError(t, svc.RotatePassword(ctx, "grace_1", "Str0ng_1A", "N3w_Passw0rd"))

	_, err = svc.VerifyAccount(ctx, "grace_1", "N3w_Passw0rd")
	require.NoError(t, err)
}
