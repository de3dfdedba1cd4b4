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

type userDoc struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	PasswordDigest string `json:"password_digest"`
	Role           string `json:"role"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// KEYS: user, user set. ARGV: doc, username.
var createUserScript = redis.NewScript(`
if redis.call('SET', KEYS[1], ARGV[1], 'NX') then
	redis.call('SADD', KEYS[2], ARGV[2])
	return 0
end
return 1
`)

// KEYS: user. ARGV: old digest, new digest, updated_at.
var swapDigestScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then return 1 end
local user = cjson.decode(raw)
if user.password_digest ~= ARGV[1] then return 1 end
user.password_digest = ARGV[2]
user.updated_at = ARGV[3]
redis.call('SET', KEYS[1], cjson.encode(user))
return 0
`)

type usersRepo struct {
	c    *redis.Client
	keys keyspace
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	created := formatTime(u.CreatedAt)
	doc, err := json.Marshal(userDoc{
		ID:             u.ID,
		Username:       u.Username,
		PasswordDigest: u.PasswordDigest,
		Role:           u.Role,
		CreatedAt:      created,
		UpdatedAt:      created,
	})
	if err != nil {
		return fmt.Errorf("redis: encode user: %w", err)
	}

	res, err := createUserScript.Run(ctx, r.c, []string{r.keys.user(u.Username), r.keys.userSet()}, doc, u.Username).Int()
	if err != nil {
		return err
	}
	if res != 0 {
		return store.ErrAlreadyExists
	}
	return nil
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	raw, err := r.c.Get(ctx, r.keys.user(username)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.User{}, store.ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}

	var doc userDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.User{}, fmt.Errorf("redis: decode user: %w", err)
	}
	return domain.User{
		ID:             doc.ID,
		Username:       doc.Username,
		PasswordDigest: doc.PasswordDigest,
		Role:           doc.Role,
		CreatedAt:      parseTime(doc.CreatedAt),
		UpdatedAt:      parseTime(doc.UpdatedAt),
	}, nil
}

func (r *usersRepo) SwapPasswordDigest(ctx context.Context, username, oldDigest, newDigest string) error {
	res, err := swapDigestScript.Run(ctx, r.c, []string{r.keys.user(username)}, oldDigest, newDigest, formatTime(time.Now())).Int()
	if err != nil {
		return err
	}
	if res != 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) CountUsers(ctx context.Context) (int, error) {
	n, err := r.c.SCard(ctx, r.keys.userSet()).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
