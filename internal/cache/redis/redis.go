// Package redis keeps session tokens in redis so they survive restarts and are shared
// between instances.
package redis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrRedisBadValue = errors.New("bad value")

const (
	minRetryBackoff = 3 * time.Second
	maxRetryBackoff = 5 * time.Second
	keyPrefix       = "session:"
)

// NewClient builds a client for addr and checks it with PING.
func NewClient(ctx context.Context, addr, password string, db int, log *slog.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            addr,
		Password:        password,
		DB:              db,
		MinRetryBackoff: minRetryBackoff,
		MaxRetryBackoff: maxRetryBackoff,
		OnConnect: func(ctx context.Context, cn *redis.Conn) error {
			log.Debug("redis connected", "addr", addr, "db", db)
			return nil
		},
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}
