package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/tinylink/internal/auth/domain"
	"github.com/aussiebroadwan/tinylink/internal/auth/store"
)

type linksRepo struct {
	db *sql.DB
}

const linkColumns = `code, url, created_by, created_at, updated_at`

var linkConstraints = map[string]error{
	"links.url":  store.ErrDuplicateURL,
	"links.code": store.ErrAlreadyExists,
}

func (r *linksRepo) Exists(ctx context.Context, code string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM links WHERE code = ?`, code).Scan(&one)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	default:
		return false, err
	}
}

func (r *linksRepo) CreateLink(ctx context.Context, l domain.Link) error {
	created := toUnix(l.CreatedAt)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO links (`+linkColumns+`) VALUES (?, ?, ?, ?, ?)`,
		l.Code, l.URL, l.CreatedBy, created, created,
	)
	if err != nil {
		return mapConstraint(err, linkConstraints)
	}
	return nil
}

func (r *linksRepo) GetLink(ctx context.Context, code string) (domain.Link, error) {
	return scanLink(r.db.QueryRowContext(ctx, `SELECT `+linkColumns+` FROM links WHERE code = ?`, code))
}

func (r *linksRepo) FindByURL(ctx context.Context, url string) (domain.Link, error) {
	return scanLink(r.db.QueryRowContext(ctx, `SELECT `+linkColumns+` FROM links WHERE url = ?`, url))
}

func (r *linksRepo) UpdateURL(ctx context.Context, code, url string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE links SET url = ?, updated_at = ? WHERE code = ?`,
		url, toUnix(time.Now()), code,
	)
	if err != nil {
		return mapConstraint(err, linkConstraints)
	}
	return requireAffected(res)
}

func (r *linksRepo) DeleteLink(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM links WHERE code = ?`, code)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *linksRepo) ListLinks(ctx context.Context) ([]domain.Link, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+linkColumns+` FROM links ORDER BY created_at DESC, code ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Link{}
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *linksRepo) ListCodes(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT code FROM links ORDER BY created_at DESC, code ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		out = append(out, code)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLink(row scanner) (domain.Link, error) {
	var (
		l                domain.Link
		created, updated int64
	)
	if err := row.Scan(&l.Code, &l.URL, &l.CreatedBy, &created, &updated); err != nil {
		return domain.Link{}, mapNotFound(err)
	}
	l.CreatedAt, l.UpdatedAt = fromUnix(created), fromUnix(updated)
	return l, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
