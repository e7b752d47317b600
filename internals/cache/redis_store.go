package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore: backend cache lintas instance.
// Entry nilai di-SET dengan TTL; tiap tag jadi Redis Set berisi key yang memakainya.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{
		rdb: redis.NewClient(&redis.Options{
			Addr:         addr,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		}),
	}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration, tags []string) error {
	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, key, val, ttl)
	for _, tag := range tags {
		pipe.SAdd(ctx, tag, key)
		// Set tag boleh hidup lebih lama dari value; member basi tinggal
		// ke-DEL no-op saat invalidasi.
		pipe.Expire(ctx, tag, ttl+5*time.Minute)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisStore) InvalidateTags(ctx context.Context, tags []string) (int, error) {
	if len(tags) == 0 {
		return 0, nil
	}
	keys, err := r.rdb.SUnion(ctx, tags...).Result()
	if err != nil {
		return 0, err
	}

	pipe := r.rdb.TxPipeline()
	var delCmd *redis.IntCmd
	if len(keys) > 0 {
		delCmd = pipe.Del(ctx, keys...)
	}
	pipe.Del(ctx, tags...)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	if delCmd != nil {
		return int(delCmd.Val()), nil
	}
	return 0, nil
}
