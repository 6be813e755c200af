package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/repository"
)

// cachedUser is the cache payload; domain.User hides the hash from JSON.
type cachedUser struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

type userCache struct {
	next   repository.UserRepository
	client *redislib.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewUserCache decorates next with a read-through Redis cache. Users are
// never updated or deleted, so entries only expire. Cache failures are
// logged and fall through to next.
func NewUserCache(next repository.UserRepository, client *redislib.Client, ttl time.Duration, logger *zap.Logger) repository.UserRepository {
	if client == nil {
		return next
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userCache{
		next:   next,
		client: client,
		prefix: "user:",
		ttl:    ttl,
		logger: logger,
	}
}

// Create is never cached up front; the row is only visible once committed.
func (c *userCache) Create(ctx context.Context, user *domain.User) error {
	return c.next.Create(ctx, user)
}

func (c *userCache) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	key := fmt.Sprintf("%sid:%d", c.prefix, id)
	if user, ok := c.lookup(ctx, key); ok {
		return user, nil
	}
	user, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, user)
	return user, nil
}

func (c *userCache) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	key := c.prefix + "email:" + email
	if user, ok := c.lookup(ctx, key); ok {
		return user, nil
	}
	user, err := c.next.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	c.store(ctx, user)
	return user, nil
}

func (c *userCache) lookup(ctx context.Context, key string) (*domain.User, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redislib.Nil) {
			c.logger.Warn("user cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var cached cachedUser
	if err := json.Unmarshal(raw, &cached); err != nil {
		c.logger.Warn("user cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &domain.User{
		ID:           cached.ID,
		Email:        cached.Email,
		PasswordHash: cached.PasswordHash,
		CreatedAt:    cached.CreatedAt.UTC(),
	}, true
}

func (c *userCache) store(ctx context.Context, user *domain.User) {
	payload, err := json.Marshal(cachedUser{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	})
	if err != nil {
		return
	}
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, fmt.Sprintf("%sid:%d", c.prefix, user.ID), payload, c.ttl)
	pipe.Set(ctx, c.prefix+"email:"+user.Email, payload, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("user cache write failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}
}

// cachedStore serves Users through the cache. Transactions see the
// underlying store directly.
type cachedStore struct {
	repository.Store
	users repository.UserRepository
}

// WithUserCache wraps store so its Users repository reads through client.
// A nil client returns store unchanged.
func WithUserCache(store repository.Store, client *redislib.Client, ttl time.Duration, logger *zap.Logger) repository.Store {
	if client == nil {
		return store
	}
	return &cachedStore{Store: store, users: NewUserCache(store.Users(), client, ttl, logger)}
}

func (s *cachedStore) Users() repository.UserRepository { return s.users }
