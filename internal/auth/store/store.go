package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/tinylink/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	ErrDuplicateURL  = errors.New("store: url already shortened")
)

// Store is the root data access interface. Concrete drivers (memory, sqlite,
// redis) implement this. Every check-then-write a service relies on is a
// single call on a sub-repository, so drivers never need to expose
// transactions.
type Store interface {
	Users() Users
	Links() Links

	// ApplyMigrations brings the schema up to date. Schemaless drivers
	// return nil.
	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the backing store is still reachable.
	Ping(ctx context.Context) error
}

type Users interface {
	// CreateUser inserts u unless the username is taken, in which case it
	// returns ErrAlreadyExists. The check and the insert are atomic.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByUsername is used during login and password rotation.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// SwapPasswordDigest replaces oldDigest with newDigest and bumps
	// updated_at. It returns ErrNotFound when the user is missing or the
	// stored digest is no longer oldDigest.
	SwapPasswordDigest(ctx context.Context, username, oldDigest, newDigest string) error

	// CountUsers returns the number of registered users.
	CountUsers(ctx context.Context) (int, error)
}

// Links doubles as the short code registry.
type Links interface {
	// Exists reports whether code is taken.
	Exists(ctx context.Context, code string) (bool, error)

	// CreateLink inserts l. A taken code yields ErrAlreadyExists and an
	// already shortened URL yields ErrDuplicateURL.
	CreateLink(ctx context.Context, l domain.Link) error

	GetLink(ctx context.Context, code string) (domain.Link, error)

	// FindByURL returns the link pointing at url.
	FindByURL(ctx context.Context, url string) (domain.Link, error)

	// UpdateURL repoints code at url and bumps updated_at.
	UpdateURL(ctx context.Context, code, url string) error

	DeleteLink(ctx context.Context, code string) error

	// ListLinks returns all links, newest first.
	ListLinks(ctx context.Context) ([]domain.Link, error)

	// ListCodes returns every issued code, newest first.
	ListCodes(ctx context.Context) ([]string, error)
}
