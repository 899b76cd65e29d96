package cache

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/ristretto/v2"
)

// Cache is a TTL cache keyed by string.
type Cache[V any] struct {
	c   *ristretto.Cache[string, V]
	ttl time.Duration
}

func New[V any](numCounters, maxCost int64, ttl time.Duration) (*Cache[V], error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, V]{
		NumCounters: numCounters,
		MaxCost:     maxCost,
		BufferItems: 64,
		OnReject: func(item *ristretto.Item[V]) {
			log.Warn("Cache item rejected", "key", item.Key)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}
	return &Cache[V]{c: c, ttl: ttl}, nil
}

func (c *Cache[V]) Set(key string, value V) error {
	if !c.c.SetWithTTL(key, value, 1, c.ttl) {
		return fmt.Errorf("failed to set value in cache")
	}
	c.c.Wait()
	return nil
}

func (c *Cache[V]) Get(key string) (V, bool) {
	return c.c.Get(key)
}

func (c *Cache[V]) Del(key string) {
	c.c.Del(key)
	c.c.Wait()
}

func (c *Cache[V]) Close() {
	c.c.Close()
}
