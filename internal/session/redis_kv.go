package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKV stores session entries in Redis.  Every write refreshes the TTL
// of the written entry and of its touch keys in one MULTI/EXEC, so the
// entries of a session expire together.  A TTL of zero keeps entries
// forever.
type RedisKV struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisKV(rdb *redis.Client, ttl time.Duration) *RedisKV {
	return &RedisKV{rdb: rdb, ttl: ttl}
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	bs, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return bs, err
}

func (r *RedisKV) Set(ctx context.Context, key string, value []byte, touch ...string) error {
	if len(touch) == 0 || r.ttl <= 0 {
		return r.rdb.Set(ctx, key, value, r.ttl).Err()
	}
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, value, r.ttl)
		for _, k := range touch {
			pipe.Expire(ctx, k, r.ttl)
		}
		return nil
	})
	return err
}

func (r *RedisKV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.rdb.Del(ctx, keys...).Err()
}
