// Package cache holds the Redis connection and the public list cache.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Options builds client options. addr is either host:port or a redis:// URL;
// a URL carries its own credentials and database.
func Options(addr, password string, db int) (*redis.Options, error) {
	var opt *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_ADDR: %w", err)
		}
		opt = parsed
	} else {
		opt = &redis.Options{Addr: addr, Password: password, DB: db}
	}
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second
	return opt, nil
}

// Connect opens a client and checks it with PING.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	opt, err := Options(addr, password, db)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to reach Redis at %s: %w", opt.Addr, err)
	}

	log.Info().Str("addr", opt.Addr).Int("db", opt.DB).Msg("connected to Redis")
	return rdb, nil
}

// Close closes the client; nil is allowed.
func Close(rdb *redis.Client) error {
	if rdb == nil {
		return nil
	}
	if err := rdb.Close(); err != nil {
		return fmt.Errorf("failed to close Redis connection: %w", err)
	}
	return nil
}
