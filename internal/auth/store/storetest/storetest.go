// Package storetest is a conformance suite every store driver runs from its
// own tests.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/tinylink/internal/auth/domain"
	"github.com/aussiebroadwan/tinylink/internal/auth/store"
	"github.com/aussiebroadwan/tinylink/pkg/idx"
	"github.com/stretchr/testify/require"
)

// Run exercises a driver. newStore must return an empty store; it is called
// once per subtest.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("users concurrent create", func(t *testing.T) { testUsersConcurrentCreate(t, newStore(t)) })
	t.Run("users concurrent swap", func(t *testing.T) { testUsersConcurrentSwap(t, newStore(t)) })
	t.Run("links", func(t *testing.T) { testLinks(t, newStore(t)) })
	t.Run("links ordering", func(t *testing.T) { testLinksOrdering(t, newStore(t)) })
	t.Run("links concurrent create", func(t *testing.T) { testLinksConcurrentCreate(t, newStore(t)) })
	t.Run("ping", func(t *testing.T) { require.NoError(t, newStore(t).Ping(context.Background())) })
}

func newUser(username, digest string) domain.User {
	now := time.Now().UTC().Truncate(time.Second)
	return domain.User{
		ID:             idx.New().String(),
		Username:       username,
		PasswordDigest: digest,
		Role:           domain.RoleRegular,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	users := s.Users()

	n, err := users.CountUsers(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	u := newUser("alice12", "digest-1")
	require.NoError(t, users.CreateUser(ctx, u))
	require.ErrorIs(t, users.CreateUser(ctx, newUser("alice12", "digest-2")), store.ErrAlreadyExists)

	got, err := users.GetUserByUsername(ctx, "alice12")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, "digest-1", got.PasswordDigest)
	require.Equal(t, domain.RoleRegular, got.Role)
	require.WithinDuration(t, u.CreatedAt, got.CreatedAt, time.Second)

	_, err = users.GetUserByUsername(ctx, "nobody")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, users.SwapPasswordDigest(ctx, "alice12", "stale", "digest-3"), store.ErrNotFound)
	require.ErrorIs(t, users.SwapPasswordDigest(ctx, "nobody", "digest-1", "digest-3"), store.ErrNotFound)
	require.NoError(t, users.SwapPasswordDigest(ctx, "alice12", "digest-1", "digest-3"))

	got, err = users.GetUserByUsername(ctx, "alice12")
	require.NoError(t, err)
	require.Equal(t, "digest-3", got.PasswordDigest)

	n, err = users.CountUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func testUsersConcurrentCreate(t *testing.T, s store.Store) {
	ctx := context.Background()
	const racers = 16

	var created atomic.Int32
	var wg sync.WaitGroup
	for i := range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Users().CreateUser(ctx, newUser("contended", fmt.Sprintf("d%d", i)))
			if err == nil {
				created.Add(1)
				return
			}
			if !errors.Is(err, store.ErrAlreadyExists) {
				t.Errorf("create: %v", err)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, created.Load())
}

func testUsersConcurrentSwap(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.Users().CreateUser(ctx, newUser("rotator", "original")))

	const racers = 16
	var won atomic.Int32
	var wg sync.WaitGroup
	for i := range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Users().SwapPasswordDigest(ctx, "rotator", "original", fmt.Sprintf("next-%d", i)) == nil {
				won.Add(1)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, won.Load())
}

func testLinks(t *testing.T, s store.Store) {
	ctx := context.Background()
	links := s.Links()

	ok, err := links.Exists(ctx, "abc12345")
	require.NoError(t, err)
	require.False(t, ok)

	l := domain.Link{Code: "abc12345", URL: "https://example.com", CreatedBy: "admin_1", CreatedAt: time.Now().UTC().Truncate(time.Second)}
	require.NoError(t, links.CreateLink(ctx, l))

	ok, err = links.Exists(ctx, "abc12345")
	require.NoError(t, err)
	require.True(t, ok)

	require.ErrorIs(t, links.CreateLink(ctx, domain.Link{Code: "abc12345", URL: "https://other.com"}), store.ErrAlreadyExists)
	require.ErrorIs(t, links.CreateLink(ctx, domain.Link{Code: "zzz99999", URL: "https://example.com"}), store.ErrDuplicateURL)

	got, err := links.GetLink(ctx, "abc12345")
	require.NoError(t, err)
	require.Equal(t, "https://example.com", got.URL)
	require.Equal(t, "admin_1", got.CreatedBy)

	got, err = links.FindByURL(ctx, "https://example.com")
	require.NoError(t, err)
	require.Equal(t, "abc12345", got.Code)

	_, err = links.GetLink(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = links.FindByURL(ctx, "https://missing.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, links.CreateLink(ctx, domain.Link{Code: "other001", URL: "https://other.com", CreatedAt: time.Now().UTC()}))
	require.ErrorIs(t, links.UpdateURL(ctx, "abc12345", "https://other.com"), store.ErrDuplicateURL)
	require.ErrorIs(t, links.UpdateURL(ctx, "missing", "https://new.com"), store.ErrNotFound)
	require.NoError(t, links.UpdateURL(ctx, "abc12345", "https://new.com"))
	require.NoError(t, links.UpdateURL(ctx, "abc12345", "https://new.com"), "repointing at the same url is allowed")

	got, err = links.GetLink(ctx, "abc12345")
	require.NoError(t, err)
	require.Equal(t, "https://new.com", got.URL)

	_, err = links.FindByURL(ctx, "https://example.com")
	require.ErrorIs(t, err, store.ErrNotFound, "old url should be released")

	require.NoError(t, links.DeleteLink(ctx, "abc12345"))
	require.ErrorIs(t, links.DeleteLink(ctx, "abc12345"), store.ErrNotFound)
	_, err = links.FindByURL(ctx, "https://new.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	codes, err := links.ListCodes(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"other001"}, codes)
}

func testLinksOrdering(t *testing.T, s store.Store) {
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, code := range []string{"first001", "second02", "third003"} {
		require.NoError(t, s.Links().CreateLink(ctx, domain.Link{
			Code:      code,
			URL:       fmt.Sprintf("https://example.com/%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := s.Links().ListLinks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "third003", all[0].Code)
	require.Equal(t, "first001", all[2].Code)
	require.True(t, all[0].CreatedAt.Equal(base.Add(2*time.Minute)))

	codes, err := s.Links().ListCodes(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"third003", "second02", "first001"}, codes)
}

func testLinksConcurrentCreate(t *testing.T, s store.Store) {
	ctx := context.Background()
	const racers = 16

	var created atomic.Int32
	var wg sync.WaitGroup
	for i := range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Links().CreateLink(ctx, domain.Link{
				Code:      "samecode",
				URL:       fmt.Sprintf("https://example.com/%d", i),
				CreatedAt: time.Now().UTC(),
			})
			if err == nil {
				created.Add(1)
				return
			}
			if !errors.Is(err, store.ErrAlreadyExists) {
				t.Errorf("create: %v", err)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, created.Load())
}
