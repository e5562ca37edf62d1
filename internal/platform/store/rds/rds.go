// Package rds wraps go-redis for short-lived ownership keys
package rds

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config configures the client
type Config struct {
	Addr string // host:port, or a redis:// URL
	DB   int
}

// Client implements set-if-absent claims with owner-checked release
type Client struct {
	c *redis.Client
}

// releaseScript deletes key only while it still holds the caller's token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Open builds the client and pings it
func Open(ctx context.Context, cfg Config) (*Client, error) {
	opts, err := options(cfg)
	if err != nil {
		return nil, err
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{c: c}, nil
}

// New wraps an existing go-redis client
func New(c *redis.Client) *Client { return &Client{c: c} }

func options(cfg Config) (*redis.Options, error) {
	if strings.HasPrefix(cfg.Addr, "redis://") || strings.HasPrefix(cfg.Addr, "rediss://") {
		opts, err := redis.ParseURL(cfg.Addr)
		if err != nil {
			return nil, fmt.Errorf("redis url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: cfg.Addr, DB: cfg.DB}, nil
}

// SetNX sets key to value with ttl when absent and reports whether it did
func (r *Client) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return r.c.SetNX(ctx, key, value, ttl).Result()
}

// Release deletes key if it still holds value
func (r *Client) Release(ctx context.Context, key, value string) (bool, error) {
	n, err := releaseScript.Run(ctx, r.c, []string{key}, value).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Ping checks the connection
func (r *Client) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

// Close closes the client
func (r *Client) Close() error { return r.c.Close() }
