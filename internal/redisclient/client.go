package redisclient

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// SetStock writes an article's current stock quantity to the cache
func (c *Client) SetStock(ctx context.Context, articleID int64, quantity int) error {
	key := fmt.Sprintf("stock:%d", articleID)
	return c.rdb.Set(ctx, key, quantity, 0).Err()
}

// SetStocks writes multiple stock quantities in one round trip
func (c *Client) SetStocks(ctx context.Context, quantities map[int64]int) error {
	pipe := c.rdb.Pipeline()
	for articleID, quantity := range quantities {
		pipe.Set(ctx, fmt.Sprintf("stock:%d", articleID), quantity, 0)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// GetStock retrieves an article's cached stock quantity
func (c *Client) GetStock(ctx context.Context, articleID int64) (int, error) {
	key := fmt.Sprintf("stock:%d", articleID)

	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, fmt.Errorf("stock not cached for article %d", articleID)
	}
	if err != nil {
		return 0, err
	}

	quantity, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("unexpected stock value for article %d: %q", articleID, val)
	}
	return quantity, nil
}

// AcquireLock acquires a distributed lock
func (c *Client) AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lock:%s", lockKey), "1", ttl).Result()
}

// ReleaseLock releases a distributed lock
func (c *Client) ReleaseLock(ctx context.Context, lockKey string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lock:%s", lockKey)).Err()
}
