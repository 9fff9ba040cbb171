package cache

import (
	"context"
	"time"
)

type noopCache struct{}

// NewNoop returns a Cache that stores nothing.
func NewNoop() Cache { return noopCache{} }

func (noopCache) Get(context.Context, string) (bool, any, error)        { return false, nil, nil }
func (noopCache) Set(context.Context, string, any, time.Duration) error { return nil }
func (noopCache) Delete(context.Context, string) (bool, error)          { return false, nil }
func (noopCache) Close() error                                          { return nil }
