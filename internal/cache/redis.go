package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type Redis struct {
	rdb    *goredis.Client
	prefix string
}

// NewRedis connects and pings; the caller decides whether a failure is fatal.
func NewRedis(addr, password string, db int) (*Redis, error) {
	if addr == "" {
		return nil, errors.New("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{rdb: rdb, prefix: "squadhub:"}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			slog.Warn("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	return b, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := r.rdb.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		slog.Warn("cache set failed", "key", key, "error", err)
	}
}

func (r *Redis) Version(ctx context.Context, namespace string) int64 {
	v, err := r.rdb.Get(ctx, r.prefix+namespace+":version").Int64()
	if err != nil {
		return 0
	}
	return v
}

func (r *Redis) Bump(ctx context.Context, namespace string) {
	if err := r.rdb.Incr(ctx, r.prefix+namespace+":version").Err(); err != nil {
		slog.Warn("cache bump failed", "namespace", namespace, "error", err)
	}
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
