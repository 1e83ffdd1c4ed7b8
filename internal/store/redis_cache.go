package store

import (
	"context"
	"errors"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/consatan/weibo-image-uploader/internal/domain"
)

// RedisConfig configures the Redis-backed CacheStore.
type RedisConfig struct {
	Addr        string
	Username    string
	Password    string
	Database    int
	Namespace   string
	DialTimeout time.Duration
}

// RedisCache stores blobs in Redis under a namespaced key. Entries carry no
// TTL: staleness is only ever discovered by the remote service rejecting a
// request, exactly as with the file adapter.
type RedisCache struct {
	client    *redis.Client
	namespace string
}

// NewRedisCache connects a RedisCache. The caller is responsible for
// ensuring the Redis instance is reachable.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, domain.NewError(domain.CodeInvalidInput, "redis addr is required")
	}
	namespace := strings.TrimSpace(cfg.Namespace)
	if namespace == "" {
		namespace = "weibo"
	}
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Username:    strings.TrimSpace(cfg.Username),
		Password:    cfg.Password,
		DB:          cfg.Database,
		DialTimeout: cfg.DialTimeout,
	})
	return &RedisCache{client: client, namespace: namespace}, nil
}

func (c *RedisCache) key(key string) string { return c.namespace + ":" + key }

func (c *RedisCache) Has(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, blob []byte) error {
	return c.client.Set(ctx, c.key(key), blob, 0).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error { return c.client.Close() }

// Compile-time assertion that RedisCache implements domain.CacheStore.
var _ domain.CacheStore = (*RedisCache)(nil)
