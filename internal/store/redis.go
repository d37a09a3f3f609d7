package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis wraps the optional redis client used for rate limiting.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to redis with short timeouts. An empty addr disables redis and returns nil.
func NewRedis(addr string) *Redis {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Redis{Client: client}
}

// Enabled reports whether a redis address was configured.
func (r *Redis) Enabled() bool {
	return r != nil && r.Client != nil
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if !r.Enabled() {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

// Close releases the client.
func (r *Redis) Close() error {
	if !r.Enabled() {
		return nil
	}
	return r.Client.Close()
}
