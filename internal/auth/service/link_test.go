package service_test

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aussiebroadwan/tinylink/internal/auth/domain"
	"github.com/aussiebroadwan/tinylink/internal/auth/service"
	"github.com/aussiebroadwan/tinylink/internal/auth/store"
	"github.com/aussiebroadwan/tinylink/internal/auth/store/drivers/memory"
	"github.com/aussiebroadwan/tinylink/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newLinkService(s store.Store) *service.LinkService {
	return &service.LinkService{
		Store:     s,
		MaxLength: 12,
		BaseURL:   "http://localhost:3000/",
	}
}

func TestShorten(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newLinkService(memory.NewStore())

	link, err := svc.Shorten(ctx, "https://example.com", "admin_1")
	require.NoError(t, err)
	require.Len(t, link.Code, idx.DefaultCodeLength)
	require.Equal(t, "https://example.com", link.URL)
	require.Equal(t, "admin_1", link.CreatedBy)
	require.Equal(t, "http://localhost:3000/"+link.Code, svc.ShortURL(link.Code))

	got, err := svc.Resolve(ctx, link.Code)
	require.NoError(t, err)
	require.Equal(t, link.URL, got.URL)
}

func TestShortenDuplicateURL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newLinkService(memory.NewStore())

	first, err := svc.Shorten(ctx, "https://example.com", "admin_1")
	require.NoError(t, err)

	again, err := svc.Shorten(ctx, "https://example.com", "admin_2")
	require.ErrorIs(t, err, service.ErrConflict)

	var exists *service.LinkExistsError
	require.ErrorAs(t, err, &exists)
	require.Equal(t, first.Code, exists.Code)
	require.Equal(t, first.Code, again.Code)
}

func TestShortenInvalidURL(t *testing.T) {
	t.Parallel()
	svc := newLinkService(memory.NewStore())

	for _, url := range []string{"ftp://example.com", "https://a.com/<script>", "not a url"} {
		_, err := svc.Shorten(context.Background(), url, "admin_1")
		require.ErrorIs(t, err, service.ErrInvalidInput, url)
	}
}

func TestShortenGrowsCodeWhenExhausted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newLinkService(memory.NewStore())
	svc.Generator = idx.Generator{Alphabet: "01", Length: 1, MaxAttempts: 64}
	svc.MaxLength = 2

	// Two codes of length one, then four of length two.
	lengths := map[int]int{}
	for i := range 6 {
		link, err := svc.Shorten(ctx, "https://example.com/"+string(rune('a'+i)), "admin_1")
		require.NoError(t, err)
		lengths[len(link.Code)]++
	}
	require.Equal(t, map[int]int{1: 2, 2: 4}, lengths)

	_, err := svc.Shorten(ctx, "https://example.com/full", "admin_1")
	require.ErrorIs(t, err, service.ErrCodeSpaceExhausted)
}

// racyStore reports the first CreateLink as a lost race on the code.
type racyStore struct {
	store.Store
	lost bool
}

func (s *racyStore) Links() store.Links { return &racyLinks{Links: s.Store.Links(), s: s} }

type racyLinks struct {
	store.Links
	s *racyStore
}

func (l *racyLinks) CreateLink(ctx context.Context, link domain.Link) error {
	if !l.s.lost {
		l.s.lost = true
		return store.ErrAlreadyExists
	}
	return l.Links.CreateLink(ctx, link)
}

func TestShortenRetriesLostRace(t *testing.T) {
	t.Parallel()
	s := &racyStore{Store: memory.NewStore()}
	svc := newLinkService(s)

	link, err := svc.Shorten(context.Background(), "https://example.com", "admin_1")
	require.NoError(t, err)
	require.True(t, s.lost)

	codes, err := svc.Keys(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{link.Code}, codes)
}

// losingStore reports every CreateLink as a lost race and counts the calls.
type losingStore struct {
	store.Store
	creates atomic.Int32
}

func (s *losingStore) Links() store.Links { return &losingLinks{Links: s.Store.Links(), s: s} }

type losingLinks struct {
	store.Links
	s *losingStore
}

func (l *losingLinks) CreateLink(ctx context.Context, link domain.Link) error {
	l.s.creates.Add(1)
	return store.ErrAlreadyExists
}

func TestShortenLostRaceBudget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		maxAttempts int
		wantCreates int32
	}{
		{"configured", 3, 3},
		{"default", 0, idx.DefaultMaxAttempts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &losingStore{Store: memory.NewStore()}
			svc := newLinkService(s)
			svc.Generator = idx.Generator{MaxAttempts: tt.maxAttempts}

			_, err := svc.Shorten(context.Background(), "https://example.com", "admin_1")
			require.ErrorIs(t, err, service.ErrCodeSpaceExhausted)
			require.Equal(t, tt.wantCreates, s.creates.Load())
		})
	}
}

// yieldingStore yields between the registry check and the insert so
// concurrent Shorten calls interleave, and counts inserts lost to a race.
type yieldingStore struct {
	store.Store
	lost atomic.Int64
}

func (s *yieldingStore) Links() store.Links { return &yieldingLinks{Links: s.Store.Links(), s: s} }

type yieldingLinks struct {
	store.Links
	s *yieldingStore
}

func (l *yieldingLinks) Exists(ctx context.Context, code string) (bool, error) {
	ok, err := l.Links.Exists(ctx, code)
	runtime.Gosched()
	return ok, err
}

func (l *yieldingLinks) CreateLink(ctx context.Context, link domain.Link) error {
	err := l.Links.CreateLink(ctx, link)
	if errors.Is(err, store.ErrAlreadyExists) {
		l.s.lost.Add(1)
	}
	return err
}

// shortenConcurrently shortens n distinct URLs from workers goroutines and
// returns the codes handed out.
func shortenConcurrently(t *testing.T, svc *service.LinkService, workers, n int) []string {
	t.Helper()

	var (
		mu    sync.Mutex
		codes = make([]string, 0, n)
		wg    sync.WaitGroup
		next  atomic.Int64
		start = make(chan struct{})
	)

	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for {
				i := next.Add(1) - 1
				if i >= int64(n) {
					return
				}
				link, err := svc.Shorten(context.Background(), fmt.Sprintf("https://example.com/page/%d", i), "admin_1")
				if err != nil {
					errs <- err
					return
				}
				mu.Lock()
				codes = append(codes, link.Code)
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	return codes
}

func TestShortenConcurrentSmallSpace(t *testing.T) {
	t.Parallel()

	stores := map[string]func(t *testing.T) store.Store{
		"memory": func(t *testing.T) store.Store { return memory.NewStore() },
		"sqlite": newSQLiteStore,
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			s := &yieldingStore{Store: newStore(t)}
			svc := newLinkService(s)
			// 64 codes for 48 links: collisions and lost inserts are routine.
			svc.Generator = idx.Generator{Alphabet: "abcd", Length: 3, MaxAttempts: 2000}
			svc.MaxLength = 3

			const n = 48
			codes := shortenConcurrently(t, svc, 16, n)
			require.Len(t, codes, n)

			seen := make(map[string]struct{}, n)
			for _, c := range codes {
				require.Len(t, c, 3)
				_, dup := seen[c]
				require.False(t, dup, "code %q handed out twice", c)
				seen[c] = struct{}{}
			}

			stored, err := svc.Keys(context.Background())
			require.NoError(t, err)
			require.ElementsMatch(t, codes, stored)
			t.Logf("inserts lost to a race: %d", s.lost.Load())
		})
	}
}

func TestShortenConcurrentUniqueness(t *testing.T) {
	if testing.Short() {
		t.Skip("generates 100,000 links")
	}
	t.Parallel()

	svc := newLinkService(memory.NewStore())

	const n = 100_000
	codes := shortenConcurrently(t, svc, 32, n)
	require.Len(t, codes, n)

	seen := make(map[string]struct{}, n)
	for _, c := range codes {
		seen[c] = struct{}{}
	}
	require.Len(t, seen, n)

	stored, err := svc.Keys(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, n)
}

func TestLinkCRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newLinkService(memory.NewStore())

	a, err := svc.Shorten(ctx, "https://a.example.com", "admin_1")
	require.NoError(t, err)
	b, err := svc.Shorten(ctx, "https://b.example.com", "admin_1")
	require.NoError(t, err)

	t.Run("update", func(t *testing.T) {
		updated, err := svc.Update(ctx, a.Code, "https://c.example.com")
		require.NoError(t, err)
		require.Equal(t, "https://c.example.com", updated.URL)
	})

	t.Run("update to a taken url", func(t *testing.T) {
		_, err := svc.Update(ctx, a.Code, "https://b.example.com")
		require.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("update invalid url", func(t *testing.T) {
		_, err := svc.Update(ctx, a.Code, "javascript:alert(1)")
		require.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("update missing", func(t *testing.T) {
		_, err := svc.Update(ctx, "missing0", "https://d.example.com")
		require.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("list", func(t *testing.T) {
		links, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, links, 2)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, b.Code))
		require.ErrorIs(t, svc.Delete(ctx, b.Code), service.ErrNotFound)

		_, err := svc.Resolve(ctx, b.Code)
		require.ErrorIs(t, err, service.ErrNotFound)

		keys, err := svc.Keys(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{a.Code}, keys)
	})
}
