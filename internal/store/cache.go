package store

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachedKV is a read-through cache in front of another KV. Entries go stale after ttl.
type CachedKV struct {
	inner KV
	cache *expirable.LRU[string, []byte]
}

func NewCachedKV(inner KV, size int, ttl time.Duration) *CachedKV {
	return &CachedKV{
		inner: inner,
		cache: expirable.NewLRU[string, []byte](size, nil, ttl),
	}
}

func (c *CachedKV) Get(ctx context.Context, key string) ([]byte, error) {
	if value, ok := c.cache.Get(key); ok {
		return append([]byte(nil), value...), nil
	}
	value, err := c.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, append([]byte(nil), value...))
	return value, nil
}

func (c *CachedKV) Set(ctx context.Context, key string, value []byte) error {
	if err := c.inner.Set(ctx, key, value); err != nil {
		c.cache.Remove(key)
		return err
	}
	c.cache.Add(key, append([]byte(nil), value...))
	return nil
}

func (c *CachedKV) Delete(ctx context.Context, key string) error {
	c.cache.Remove(key)
	return c.inner.Delete(ctx, key)
}

// Invalidate drops key from the cache so the next read goes to the backing store.
func (c *CachedKV) Invalidate(key string) {
	c.cache.Remove(key)
}

func (c *CachedKV) Close() error {
	c.cache.Purge()
	return c.inner.Close()
}
