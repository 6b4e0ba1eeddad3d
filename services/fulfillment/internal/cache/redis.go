// Package cache keeps rendered delivery details in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/transport"
)

const DefaultTTL = 10 * time.Minute

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(ctx context.Context, addr string, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func deliveryKey(id uint) string {
	return fmt.Sprintf("delivery:%d", id)
}

// Get returns nil, nil on a miss.
func (c *RedisCache) Get(ctx context.Context, id uint) (*transport.DeliveryDetail, error) {
	data, err := c.client.Get(ctx, deliveryKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var d transport.DeliveryDetail
	if err := json.Unmarshal(data, &d); err != nil {
		// a stale shape is treated as a miss and dropped
		_ = c.client.Del(ctx, deliveryKey(id)).Err()
		return nil, nil
	}
	return &d, nil
}

func (c *RedisCache) Set(ctx context.Context, d *transport.DeliveryDetail) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, deliveryKey(d.ID), data, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, id uint) error {
	return c.client.Del(ctx, deliveryKey(id)).Err()
}
