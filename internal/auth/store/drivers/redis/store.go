// Package redis stores users and links in Redis. Values are JSON documents;
// every multi-key write runs as a Lua script so it is atomic on the server.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tinylink/internal/auth/store"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key the driver touches.
const DefaultPrefix = "tinylink:"

type Config struct {
	// URL is a redis:// or rediss:// connection string.
	URL string

	// Prefix is prepended to every key. Empty means DefaultPrefix.
	Prefix string

	DialTimeout time.Duration
}

type Store struct {
	client *redis.Client
	keys   keyspace
}

// NewStore connects and pings the server.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	return NewStoreFromClient(client, cfg.Prefix), nil
}

// NewStoreFromClient wraps an existing client. The store takes ownership and
// closes it on Close.
func NewStoreFromClient(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, keys: keyspace(prefix)}
}

func (s *Store) Users() store.Users { return &usersRepo{c: s.client, keys: s.keys} }
func (s *Store) Links() store.Links { return &linksRepo{c: s.client, keys: s.keys} }

// ApplyMigrations is a no-op, there is no schema.
func (s *Store) ApplyMigrations() error { return nil }

func (s *Store) Close() error { return s.client.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

type keyspace string

func (k keyspace) user(username string) string { return string(k) + "user:" + username }
func (k keyspace) userSet() string             { return string(k) + "users" }
func (k keyspace) link(code string) string     { return string(k) + "link:" + code }
func (k keyspace) linksByTime() string         { return string(k) + "links:by_time" }
func (k keyspace) linksByURL() string          { return string(k) + "links:by_url" }

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
