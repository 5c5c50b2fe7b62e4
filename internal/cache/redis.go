package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

type Redis struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	log    *slog.Logger
}

func NewRedis(cfg RedisConfig, log *slog.Logger) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "courseapi:"
	}
	if log == nil {
		log = slog.Default()
	}

	return &Redis{rdb: rdb, ttl: ttl, prefix: prefix, log: log}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn("cache get failed", "key", key, "err", err)
		}
		return nil, false
	}
	return val, true
}

func (r *Redis) Set(ctx context.Context, key string, val []byte) {
	if err := r.rdb.Set(ctx, r.prefix+key, val, r.ttl).Err(); err != nil {
		r.log.Warn("cache set failed", "key", key, "err", err)
	}
}

func (r *Redis) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.prefix + k
	}
	if err := r.rdb.Del(ctx, full...).Err(); err != nil {
		r.log.Warn("cache delete failed", "keys", keys, "err", err)
	}
}

// Ping checks redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
