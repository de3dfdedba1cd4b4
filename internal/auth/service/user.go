package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tinylink/internal/auth/domain"
	"github.com/aussiebroadwan/tinylink/internal/auth/store"
	"github.com/aussiebroadwan/tinylink/pkg/cryptox"
	"github.com/aussiebroadwan/tinylink/pkg/idx"
	"github.com/aussiebroadwan/tinylink/pkg/jwtx"
	"github.com/aussiebroadwan/tinylink/pkg/policy"
	"github.com/aussiebroadwan/tinylink/pkg/slogx"
)

// UserService is the credential store: it owns account creation, password
// checks and rotation, and mints access tokens on login.
type UserService struct {
	Store  store.Store
	Hasher cryptox.Hasher
	Tokens jwtx.Signer
}

// CreateAccount registers username with password and role. An empty role
// means regular.
func (s *UserService) CreateAccount(ctx context.Context, username, password, role string) (domain.User, error) {
	if role == "" {
		role = domain.RoleRegular
	}
	switch {
	case !policy.AccountNameValid(username):
		return domain.User{}, fmt.Errorf("%w: username must be at least %d letters, digits or underscores", ErrInvalidInput, policy.MinAccountNameLength)
	case !policy.PasswordStrong(password):
		return domain.User{}, fmt.Errorf("%w: password must be at least %d characters with upper, lower and digit", ErrInvalidInput, policy.MinPasswordLength)
	case !policy.RoleValid(role):
		return domain.User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	digest, err := s.Hasher.Hash(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	u := domain.User{
		ID:             idx.New().String(),
		Username:       username,
		PasswordDigest: digest,
		Role:           role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrConflict
		}
		return domain.User{}, err
	}
	return u, nil
}

// VerifyAccount checks username and password. Unknown users and wrong
// passwords both yield ErrUnauthorized, and both pay for a digest
// computation.
func (s *UserService) VerifyAccount(ctx context.Context, username, password string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return domain.User{}, err
		}
		_, _ = s.Hasher.Hash(password)
		return domain.User{}, ErrUnauthorized
	}

	if err := s.Hasher.Verify(password, u.PasswordDigest); err != nil {
		return domain.User{}, ErrUnauthorized
	}
	return u, nil
}

// RotatePassword replaces the password after checking the old one. Two
// concurrent rotations from the same old password cannot both succeed.
func (s *UserService) RotatePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	u, err := s.VerifyAccount(ctx, username, oldPassword)
	if err != nil {
		return err
	}
	if !policy.PasswordStrong(newPassword) {
		return fmt.Errorf("%w: password must be at least %d characters with upper, lower and digit", ErrInvalidInput, policy.MinPasswordLength)
	}

	digest, err := s.Hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.Store.Users().SwapPasswordDigest(ctx, username, u.PasswordDigest, digest); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Rotated underneath us: the old password is no longer current.
			return ErrUnauthorized
		}
		return err
	}
	return nil
}

// Login verifies the credentials and issues an access token.
func (s *UserService) Login(ctx context.Context, username, password string) (string, domain.User, error) {
	l := slogx.FromContext(ctx)

	u, err := s.VerifyAccount(ctx, username, password)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			l.Info("login failed", "username", username)
		}
		return "", domain.User{}, err
	}

	token, err := s.Tokens.Issue(u.Username, u.Role)
	if err != nil {
		l.Error("failed to sign access token", "error", err)
		return "", domain.User{}, err
	}

	l.Info("login succeeded", "username", u.Username, "role", u.Role)
	return token, u, nil
}

// EnsureAdmin creates an admin account unless the username already exists.
// It is safe to call on every start.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) error {
	l := slogx.FromContext(ctx)

	_, err := s.CreateAccount(ctx, username, password, domain.RoleAdmin)
	switch {
	case err == nil:
		l.Info("admin account created", "username", username)
		return nil
	case errors.Is(err, ErrConflict):
		l.Debug("admin account already present", "username", username)
		return nil
	default:
		return fmt.Errorf("ensure admin %q: %w", username, err)
	}
}

// NeedsBootstrap reports whether no account exists yet. Without an admin
// account nobody can shorten links, so startup warns about it.
func (s *UserService) NeedsBootstrap(ctx context.Context) (bool, error) {
	n, err := s.Store.Users().CountUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n == 0, nil
}
