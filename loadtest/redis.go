package loadtest

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// tagSetPrefix namespaces the Redis sets that index keys by tag.
const tagSetPrefix = "tag:"

// RedisTarget is the Redis baseline. Tags are kept as one Redis set of keys
// per tag, so invalidation costs one SUNION plus one DEL.
type RedisTarget struct {
	client *redis.Client
}

// NewRedisTarget connects to Redis and verifies the connection.
func NewRedisTarget(addr, password string, db int) (*RedisTarget, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisTarget{client: client}, nil
}

// Name returns "redis".
func (t *RedisTarget) Name() string { return "redis" }

// Set stores value at key and indexes key under each tag in one transaction.
func (t *RedisTarget) Set(ctx context.Context, key, value string, tags []string) error {
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, value, 0)
		for _, tag := range tags {
			pipe.SAdd(ctx, tagSetPrefix+tag, key)
		}
		return nil
	})
	return err
}

// Get reports whether key exists.
func (t *RedisTarget) Get(ctx context.Context, key string) (bool, error) {
	err := t.client.Get(ctx, key).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	return err == nil, err
}

// Invalidate deletes every key indexed under any of tags, and the tag sets.
func (t *RedisTarget) Invalidate(ctx context.Context, tags []string) (int, error) {
	if len(tags) == 0 {
		return 0, nil
	}

	setKeys := make([]string, len(tags))
	for i, tag := range tags {
		setKeys[i] = tagSetPrefix + tag
	}

	keys, err := t.client.SUnion(ctx, setKeys...).Result()
	if err != nil {
		return 0, err
	}

	var removed *redis.IntCmd
	_, err = t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(keys) > 0 {
			removed = pipe.Del(ctx, keys...)
		}
		pipe.Del(ctx, setKeys...)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if removed == nil {
		return 0, nil
	}
	return int(removed.Val()), nil
}

// Flush removes every key of the selected database.
func (t *RedisTarget) Flush(ctx context.Context) error {
	return t.client.FlushDB(ctx).Err()
}

// Close closes the Redis connection.
func (t *RedisTarget) Close() error {
	return t.client.Close()
}
