package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis backs the cache Store with a shared Redis instance so cached note
// reads survive process restarts and are shared across replicas.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func NewRedis(cfg RedisConfig) *Redis {
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
		ttl = 5 * time.Second
	}

	return &Redis{rdb: rdb, ttl: ttl}
}

// Ping checks redis connectivity on startup.
func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}

// Get is best effort: a Redis error counts as a miss.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.rdb.Get(ctx, key).Bytes()

	if err != nil {
		return nil, false
	}

	return val, true
}

func (r *Redis) Set(ctx context.Context, key string, val []byte) {
	_ = r.rdb.Set(ctx, key, val, r.ttl).Err()
}

// SetIfAbsent is best effort like Get: a Redis error reports "not set".
func (r *Redis) SetIfAbsent(ctx context.Context, key string, val []byte) bool {
	ok, err := r.rdb.SetNX(ctx, key, val, r.ttl).Result()

	return err == nil && ok
}

func (r *Redis) Delete(ctx context.Context, key string) {
	_ = r.rdb.Del(ctx, key).Err()
}
