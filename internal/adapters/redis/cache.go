package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Client() *redis.Client {
	return c.client
}

// GetOrderJSON returns a cached order response body, or nil on a miss.
func (c *Cache) GetOrderJSON(ctx context.Context, orderID string) ([]byte, error) {
	val, err := c.client.Get(ctx, "order:"+orderID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return val, err
}

func (c *Cache) SetOrderJSON(ctx context.Context, orderID string, body []byte, ttl time.Duration) error {
	return c.client.Set(ctx, "order:"+orderID, body, ttl).Err()
}

// InvalidateOrder drops the cached response after a status transition.
func (c *Cache) InvalidateOrder(ctx context.Context, orderID string) error {
	return c.client.Del(ctx, "order:"+orderID).Err()
}
