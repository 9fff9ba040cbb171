// Package cache stores generation results so identical profiles do not hit
// the language model twice within the TTL.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Cache is a TTL key/value store. Values from I/O-backed caches come back
// as msgpack-encoded []byte; use GetTyped to decode them.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (bool, any, error)
	// Set stores val for key. If ttl <= 0 the cache's default TTL is used.
	Set(ctx context.Context, key string, val any, ttl time.Duration) error
	// Delete removes key and reports whether it existed.
	Delete(ctx context.Context, key string) (bool, error)
	// Close releases background resources.
	Close() error
}

// DefaultTTL applies when a cache is created without WithTTL.
const DefaultTTL = 30 * time.Minute

// DefaultQueryTimeout bounds each operation of I/O-backed caches.
const DefaultQueryTimeout = 2 * time.Second

type options struct {
	ttl          time.Duration
	queryTimeout time.Duration
	sweepEvery   time.Duration
	prefix       string
}

// Option configures a Cache implementation.
type Option func(*options)

// WithTTL sets the default TTL.
func WithTTL(d time.Duration) Option {
	return func(o *options) { o.ttl = d }
}

// WithQueryTimeout sets the per-operation timeout of the Redis backend.
func WithQueryTimeout(d time.Duration) Option {
	return func(o *options) { o.queryTimeout = d }
}

// WithSweepInterval sets how often the in-memory backend drops expired entries.
func WithSweepInterval(d time.Duration) Option {
	return func(o *options) { o.sweepEvery = d }
}

// WithPrefix namespaces Redis keys as prefix:key.
func WithPrefix(p string) Option {
	return func(o *options) { o.prefix = p }
}

func applyOptions(opts []Option) options {
	o := options{
		ttl:          DefaultTTL,
		queryTimeout: DefaultQueryTimeout,
		sweepEvery:   time.Minute,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// GetTyped reads key and converts it to T, decoding msgpack bytes when needed.
func GetTyped[T any](ctx context.Context, c Cache, key string) (bool, T, error) {
	var zero T
	found, val, err := c.Get(ctx, key)
	if !found || err != nil {
		return false, zero, err
	}
	if typed, ok := val.(T); ok {
		return true, typed, nil
	}
	if data, ok := val.([]byte); ok {
		var out T
		if err := msgpack.Unmarshal(data, &out); err != nil {
			return false, zero, fmt.Errorf("cache: failed to unmarshal value: %w", err)
		}
		return true, out, nil
	}
	return false, zero, fmt.Errorf("cache: cannot convert value of type %T to %T", val, zero)
}

// Exec returns the cached value for key or, on a miss, calls produce and
// stores its result. Cache read and write failures never fail the call;
// they are reported to onCacheError when it is non-nil.
func Exec[T any](
	ctx context.Context,
	c Cache,
	key string,
	ttl time.Duration,
	produce func(ctx context.Context) (T, error),
	onCacheError func(error),
) (T, bool, error) {
	report := func(err error) {
		if onCacheError != nil {
			onCacheError(err)
		}
	}

	found, cached, err := GetTyped[T](ctx, c, key)
	if err != nil {
		report(err)
	} else if found {
		return cached, true, nil
	}

	result, err := produce(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}

	if err := c.Set(ctx, key, result, ttl); err != nil {
		report(err)
	}
	return result, false, nil
}
