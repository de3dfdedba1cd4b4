// Package memory is an in-process Store. State lives for the lifetime of
// the process; it backs tests and single-instance deployments.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aussiebroadwan/tinylink/internal/auth/domain"
	"github.com/aussiebroadwan/tinylink/internal/auth/store"
)

type Store struct {
	mu    sync.RWMutex
	users map[string]domain.User // by username
	links map[string]domain.Link // by code
	urls  map[string]string      // url -> code

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users: make(map[string]domain.User),
		links: make(map[string]domain.Link),
		urls:  make(map[string]string),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Users() store.Users { return &usersRepo{s: s} }
func (s *Store) Links() store.Links { return &linksRepo{s: s} }

func (s *Store) ApplyMigrations() error         { return nil }
func (s *Store) Close() error                   { return nil }
func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }
