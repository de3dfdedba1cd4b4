package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/tinylink/internal/auth/domain"
	"github.com/aussiebroadwan/tinylink/internal/auth/store"
	"github.com/aussiebroadwan/tinylink/pkg/idx"
	"github.com/aussiebroadwan/tinylink/pkg/policy"
	"github.com/aussiebroadwan/tinylink/pkg/slogx"
)

// LinkService owns short links. Codes come from Generator and are checked
// against the link store, which doubles as the code registry.
type LinkService struct {
	Store     store.Store
	Generator idx.Generator

	// MaxLength caps how far Shorten grows the code after the generator
	// reports exhaustion. Zero means no growth.
	MaxLength int

	// BaseURL prefixes codes in ShortURL, e.g. "https://tiny.example".
	BaseURL string
}

// Shorten stores url under a fresh code. If url is already shortened the
// existing link is returned together with a *LinkExistsError.
func (s *LinkService) Shorten(ctx context.Context, url, createdBy string) (domain.Link, error) {
	l := slogx.FromContext(ctx)

	if !policy.URLValid(url) {
		return domain.Link{}, fmt.Errorf("%w: invalid URL", ErrInvalidInput)
	}

	if existing, err := s.Store.Links().FindByURL(ctx, url); err == nil {
		return existing, &LinkExistsError{Code: existing.Code}
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.Link{}, err
	}

	gen := s.Generator
	length := gen.Length
	if length <= 0 {
		length = idx.DefaultCodeLength
	}
	maxLength := max(s.MaxLength, length)

	registry := idx.RegistryFunc(func(code string) (bool, error) {
		return s.Store.Links().Exists(ctx, code)
	})

	maxRaces := gen.MaxAttempts
	if maxRaces <= 0 {
		maxRaces = idx.DefaultMaxAttempts
	}

	races := 0
	for gen.Length = length; gen.Length <= maxLength; {
		code, err := gen.Generate(registry)
		if errors.Is(err, idx.ErrExhausted) {
			l.Warn("short code space exhausted, growing code", "length", gen.Length)
			gen.Length++
			continue
		}
		if err != nil {
			return domain.Link{}, err
		}

		link := domain.Link{
			Code:      code,
			URL:       url,
			CreatedBy: createdBy,
			CreatedAt: time.Now().UTC(),
		}
		link.UpdatedAt = link.CreatedAt

		err = s.Store.Links().CreateLink(ctx, link)
		switch {
		case err == nil:
			l.Info("link created", "code", code, "created_by", createdBy)
			return link, nil
		case errors.Is(err, store.ErrAlreadyExists):
			// Lost a race for this code; draw again.
			if races++; races >= maxRaces {
				return domain.Link{}, ErrCodeSpaceExhausted
			}
			continue
		case errors.Is(err, store.ErrDuplicateURL):
			existing, ferr := s.Store.Links().FindByURL(ctx, url)
			if ferr != nil {
				return domain.Link{}, ferr
			}
			return existing, &LinkExistsError{Code: existing.Code}
		default:
			return domain.Link{}, err
		}
	}

	l.Error("short code space exhausted", "max_length", maxLength)
	return domain.Link{}, ErrCodeSpaceExhausted
}

// Resolve returns the link for code.
func (s *LinkService) Resolve(ctx context.Context, code string) (domain.Link, error) {
	link, err := s.Store.Links().GetLink(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Link{}, ErrNotFound
	}
	return link, err
}

// Update repoints code at url.
func (s *LinkService) Update(ctx context.Context, code, url string) (domain.Link, error) {
	if !policy.URLValid(url) {
		return domain.Link{}, fmt.Errorf("%w: invalid URL", ErrInvalidInput)
	}

	err := s.Store.Links().UpdateURL(ctx, code, url)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.Link{}, ErrNotFound
	case errors.Is(err, store.ErrDuplicateURL):
		existing, ferr := s.Store.Links().FindByURL(ctx, url)
		if ferr != nil {
			return domain.Link{}, ferr
		}
		return existing, &LinkExistsError{Code: existing.Code}
	case err != nil:
		return domain.Link{}, err
	}

	slogx.FromContext(ctx).Info("link updated", "code", code)
	return s.Resolve(ctx, code)
}

// Delete removes code, freeing it for reuse.
func (s *LinkService) Delete(ctx context.Context, code string) error {
	err := s.Store.Links().DeleteLink(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("link deleted", "code", code)
	return nil
}

// List returns all links, newest first.
func (s *LinkService) List(ctx context.Context) ([]domain.Link, error) {
	return s.Store.Links().ListLinks(ctx)
}

// Keys returns every issued code, newest first.
func (s *LinkService) Keys(ctx context.Context) ([]string, error) {
	return s.Store.Links().ListCodes(ctx)
}

// ShortURL renders the public short URL for code.
func (s *LinkService) ShortURL(code string) string {
	return strings.TrimRight(s.BaseURL, "/") + "/" + code
}
