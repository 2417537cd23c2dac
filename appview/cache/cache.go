package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a Store shared between appview instances.
type Cache struct {
	*redis.Client
}

func NewWithOptions(opts *redis.Options) *Cache {
	return &Cache{redis.NewClient(opts)}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return c.Client.Set(ctx, key, val, ttl).Err()
}

var _ Store = (*Cache)(nil)
