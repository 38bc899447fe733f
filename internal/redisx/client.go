package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// New builds a redis client for the given address.
func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 2 * time.Second,
	})
}

// Ping verifies the connection.
func Ping(ctx context.Context, rdb *redis.Client) error {
	return rdb.Ping(ctx).Err()
}
