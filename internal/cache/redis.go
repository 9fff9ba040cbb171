package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

type redisCache struct {
	client redis.UniversalClient
	opts   options
}

var _ Cache = (*redisCache)(nil)

// NewRedis returns a Cache backed by Redis with msgpack-encoded values.
// The caller owns the client; Close does not close it.
func NewRedis(client redis.UniversalClient, opts ...Option) Cache {
	return &redisCache{client: client, opts: applyOptions(opts)}
}

func (c *redisCache) key(k string) string {
	if c.opts.prefix == "" {
		return k
	}
	return c.opts.prefix + ":" + k
}

func (c *redisCache) Get(ctx context.Context, key string) (bool, any, error) {
	qctx, cancel := context.WithTimeout(ctx, c.opts.queryTimeout)
	defer cancel()
	data, err := c.client.Get(qctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}
	return true, data, nil
}

func (c *redisCache) Set(ctx context.Context, key string, val any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.opts.ttl
	}
	data, err := msgpack.Marshal(val)
	if err != nil {
		return err
	}
	qctx, cancel := context.WithTimeout(ctx, c.opts.queryTimeout)
	defer cancel()
	return c.client.Set(qctx, c.key(key), data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, key string) (bool, error) {
	qctx, cancel := context.WithTimeout(ctx, c.opts.queryTimeout)
	defer cancel()
	n, err := c.client.Del(qctx, c.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *redisCache) Close() error { return nil }
