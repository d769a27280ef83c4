package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "user-admin-service/internal/domain/user"
)

// SnapshotKey holds the whole user collection in store order.
const SnapshotKey = "users:all"

// UserCache caches single users and the whole-collection snapshot. Get and
// GetAll return nil, nil on a miss.
type UserCache interface {
	Get(ctx context.Context, id int64) (*domain.User, error)
	Set(ctx context.Context, user *domain.User) error
	GetAll(ctx context.Context) ([]domain.User, error)
	SetAll(ctx context.Context, users []domain.User) error
	// Invalidate drops the snapshot and the given users.
	Invalidate(ctx context.Context, ids ...int64) error
}

// RedisUserCache implements UserCache using Redis as the backing store.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisUserCache creates a new Redis-backed user cache.
func NewRedisUserCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisUserCache {
	return &RedisUserCache{
		client: client,
		ttl:    ttl,
		log:    log.Named("cache"),
	}
}

func userKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

// Get retrieves a user from Redis cache.
func (c *RedisUserCache) Get(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	ok, err := c.get(ctx, userKey(id), &user)
	if err != nil || !ok {
		return nil, err
	}
	return &user, nil
}

// Set stores a user in Redis cache with TTL.
func (c *RedisUserCache) Set(ctx context.Context, user *domain.User) error {
	if user == nil {
		return errors.New("cannot cache nil user")
	}
	return c.set(ctx, userKey(user.ID), user)
}

// GetAll retrieves the collection snapshot.
func (c *RedisUserCache) GetAll(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	ok, err := c.get(ctx, SnapshotKey, &users)
	if err != nil || !ok {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// SetAll stores the collection snapshot.
func (c *RedisUserCache) SetAll(ctx context.Context, users []domain.User) error {
	if users == nil {
		users = []domain.User{}
	}
	return c.set(ctx, SnapshotKey, users)
}

// Invalidate removes the snapshot and the listed users in one round trip.
func (c *RedisUserCache) Invalidate(ctx context.Context, ids ...int64) error {
	keys := make([]string, 0, len(ids)+1)
	keys = append(keys, SnapshotKey)
	for _, id := range ids {
		keys = append(keys, userKey(id))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Error("failed to invalidate cache", zap.Strings("keys", keys), zap.Error(err))
		return err
	}

	c.log.Debug("invalidated cache", zap.Strings("keys", keys))
	return nil
}

func (c *RedisUserCache) get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug("cache miss", zap.String("key", key))
		return false, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.String("key", key), zap.Error(err))
		return false, err
	}

	if err := json.Unmarshal(data, dst); err != nil {
		c.log.Error("failed to unmarshal cached value", zap.String("key", key), zap.Error(err))
		return false, err
	}

	c.log.Debug("cache hit", zap.String("key", key))
	return true, nil
}

func (c *RedisUserCache) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Error("failed to marshal value for cache", zap.String("key", key), zap.Error(err))
		return err
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set cache", zap.String("key", key), zap.Error(err))
		return err
	}

	c.log.Debug("cached value", zap.String("key", key), zap.Duration("ttl", c.ttl))
	return nil
}
