package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/aussiebroadwan/tinylink/internal/auth/domain"
	"github.com/aussiebroadwan/tinylink/internal/auth/store"
)

type linksRepo struct {
	s *Store
}

func (r *linksRepo) Exists(ctx context.Context, code string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.links[code]
	return ok, nil
}

func (r *linksRepo) CreateLink(ctx context.Context, l domain.Link) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.links[l.Code]; ok {
		return store.ErrAlreadyExists
	}
	if _, ok := r.s.urls[l.URL]; ok {
		return store.ErrDuplicateURL
	}

	if l.CreatedAt.IsZero() {
		l.CreatedAt = r.s.now()
	}
	l.UpdatedAt = l.CreatedAt
	r.s.links[l.Code] = l
	r.s.urls[l.URL] = l.Code
	return nil
}

func (r *linksRepo) GetLink(ctx context.Context, code string) (domain.Link, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	l, ok := r.s.links[code]
	if !ok {
		return domain.Link{}, store.ErrNotFound
	}
	return l, nil
}

func (r *linksRepo) FindByURL(ctx context.Context, url string) (domain.Link, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	code, ok := r.s.urls[url]
	if !ok {
		return domain.Link{}, store.ErrNotFound
	}
	return r.s.links[code], nil
}

func (r *linksRepo) UpdateURL(ctx context.Context, code, url string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.links[code]
	if !ok {
		return store.ErrNotFound
	}
	if owner, ok := r.s.urls[url]; ok && owner != code {
		return store.ErrDuplicateURL
	}

	delete(r.s.urls, l.URL)
	l.URL = url
	l.UpdatedAt = r.s.now()
	r.s.links[code] = l
	r.s.urls[url] = code
	return nil
}

func (r *linksRepo) DeleteLink(ctx context.Context, code string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.links[code]
	if !ok {
		return store.ErrNotFound
	}
	delete(r.s.links, code)
	delete(r.s.urls, l.URL)
	return nil
}

func (r *linksRepo) ListLinks(ctx context.Context) ([]domain.Link, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Link, 0, len(r.s.links))
	for _, l := range r.s.links {
		out = append(out, l)
	}
	slices.SortFunc(out, func(a, b domain.Link) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Code, b.Code)
	})
	return out, nil
}

func (r *linksRepo) ListCodes(ctx context.Context) ([]string, error) {
	links, err := r.ListLinks(ctx)
	if err != nil {
		return nil, err
	}
	codes := make([]string, len(links))
	for i, l := range links {
		codes[i] = l.Code
	}
	return codes, nil
}
