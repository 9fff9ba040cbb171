package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	val     any
	expires time.Time
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]entry
	opts    options
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	once    sync.Once
}

var _ Cache = (*memoryCache)(nil)

// NewMemory returns a process-local Cache. Values are returned as stored,
// without copying. A background goroutine drops expired entries until Close.
func NewMemory(opts ...Option) Cache {
	ctx, cancel := context.WithCancel(context.Background())
	c := &memoryCache{
		entries: make(map[string]entry),
		opts:    applyOptions(opts),
		cancel:  cancel,
	}
	c.wg.Add(1)
	go c.sweep(ctx)
	return c
}

func (c *memoryCache) Get(_ context.Context, key string) (bool, any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return false, nil, nil
	}
	if time.Now().After(e.expires) {
		delete(c.entries, key)
		return false, nil, nil
	}
	return true, e.val, nil
}

func (c *memoryCache) Set(_ context.Context, key string, val any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.opts.ttl
	}
	c.mu.Lock()
	c.entries[key] = entry{val: val, expires: time.Now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok, nil
}

func (c *memoryCache) Close() error {
	c.once.Do(func() {
		c.cancel()
		c.wg.Wait()
	})
	return nil
}

func (c *memoryCache) sweep(ctx context.Context) {
	defer c.wg.Done()
	ticker := time.NewTicker(c.opts.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for key, e := range c.entries {
				if now.After(e.expires) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
