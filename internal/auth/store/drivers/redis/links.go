package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tinylink/internal/auth/domain"
	"github.com/aussiebroadwan/tinylink/internal/auth/store"
	"github.com/redis/go-redis/v9"
)

type linkDoc struct {
	Code      string `json:"code"`
	URL       string `json:"url"`
	CreatedBy string `json:"created_by"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Script results: 0 ok, 1 code missing or taken, 2 url taken.
const (
	scriptOK = iota
	scriptCode
	scriptURL
)

// KEYS: link, by_time, by_url. ARGV: doc, url, score, code.
var createLinkScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then return 1 end
if redis.call('HEXISTS', KEYS[3], ARGV[2]) == 1 then return 2 end
redis.call('SET', KEYS[1], ARGV[1])
redis.call('ZADD', KEYS[2], ARGV[3], ARGV[4])
redis.call('HSET', KEYS[3], ARGV[2], ARGV[4])
return 0
`)

// KEYS: link, by_url. ARGV: new url, updated_at, code.
var updateLinkScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then return 1 end
local owner = redis.call('HGET', KEYS[2], ARGV[1])
if owner and owner ~= ARGV[3] then return 2 end
local link = cjson.decode(raw)
redis.call('HDEL', KEYS[2], link.url)
link.url = ARGV[1]
link.updated_at = ARGV[2]
redis.call('SET', KEYS[1], cjson.encode(link))
redis.call('HSET', KEYS[2], ARGV[1], ARGV[3])
return 0
`)

// KEYS: link, by_time, by_url. ARGV: code.
var deleteLinkScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then return 1 end
local link = cjson.decode(raw)
redis.call('DEL', KEYS[1])
redis.call('ZREM', KEYS[2], ARGV[1])
redis.call('HDEL', KEYS[3], link.url)
return 0
`)

type linksRepo struct {
	c    *redis.Client
	keys keyspace
}

func (r *linksRepo) Exists(ctx context.Context, code string) (bool, error) {
	n, err := r.c.Exists(ctx, r.keys.link(code)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *linksRepo) CreateLink(ctx context.Context, l domain.Link) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	created := formatTime(l.CreatedAt)
	doc, err := json.Marshal(linkDoc{
		Code:      l.Code,
		URL:       l.URL,
		CreatedBy: l.CreatedBy,
		CreatedAt: created,
		UpdatedAt: created,
	})
	if err != nil {
		return fmt.Errorf("redis: encode link: %w", err)
	}

	keys := []string{r.keys.link(l.Code), r.keys.linksByTime(), r.keys.linksByURL()}
	res, err := createLinkScript.Run(ctx, r.c, keys, doc, l.URL, l.CreatedAt.UnixMilli(), l.Code).Int()
	if err != nil {
		return err
	}
	switch res {
	case scriptCode:
		return store.ErrAlreadyExists
	case scriptURL:
		return store.ErrDuplicateURL
	}
	return nil
}

func (r *linksRepo) GetLink(ctx context.Context, code string) (domain.Link, error) {
	raw, err := r.c.Get(ctx, r.keys.link(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Link{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Link{}, err
	}
	return decodeLink(raw)
}

func (r *linksRepo) FindByURL(ctx context.Context, url string) (domain.Link, error) {
	code, err := r.c.HGet(ctx, r.keys.linksByURL(), url).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Link{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Link{}, err
	}
	return r.GetLink(ctx, code)
}

func (r *linksRepo) UpdateURL(ctx context.Context, code, url string) error {
	keys := []string{r.keys.link(code), r.keys.linksByURL()}
	res, err := updateLinkScript.Run(ctx, r.c, keys, url, formatTime(time.Now()), code).Int()
	if err != nil {
		return err
	}
	switch res {
	case scriptCode:
		return store.ErrNotFound
	case scriptURL:
		return store.ErrDuplicateURL
	}
	return nil
}

func (r *linksRepo) DeleteLink(ctx context.Context, code string) error {
	keys := []string{r.keys.link(code), r.keys.linksByTime(), r.keys.linksByURL()}
	res, err := deleteLinkScript.Run(ctx, r.c, keys, code).Int()
	if err != nil {
		return err
	}
	if res != scriptOK {
		return store.ErrNotFound
	}
	return nil
}

func (r *linksRepo) ListLinks(ctx context.Context) ([]domain.Link, error) {
	codes, err := r.ListCodes(ctx)
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return []domain.Link{}, nil
	}

	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = r.keys.link(code)
	}
	vals, err := r.c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]domain.Link, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue // deleted between ZREVRANGE and MGET
		}
		l, err := decodeLink([]byte(s))
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// ListCodes orders by creation time, newest first. Codes created in the same
// millisecond come back in reverse lexical order.
func (r *linksRepo) ListCodes(ctx context.Context) ([]string, error) {
	return r.c.ZRevRange(ctx, r.keys.linksByTime(), 0, -1).Result()
}

func decodeLink(raw []byte) (domain.Link, error) {
	var doc linkDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Link{}, fmt.Errorf("redis: decode link: %w", err)
	}
	return domain.Link{
		Code:      doc.Code,
		URL:       doc.URL,
		CreatedBy: doc.CreatedBy,
		CreatedAt: parseTime(doc.CreatedAt),
		UpdatedAt: parseTime(doc.UpdatedAt),
	}, nil
}
