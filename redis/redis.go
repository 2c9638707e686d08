package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis remembers deleted thought ids in Redis.
type Redis struct {
	cli *redis.Client
	ttl time.Duration
}

// Connect connects to the Redis server and pings the server to ensure the
// connection is working. Deleted ids are forgotten after ttl; zero keeps them
// until the next Flush.
func Connect(ctx context.Context, addr string, ttl time.Duration) (*Redis, error) {
	cli := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		cli.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{
		cli: cli,
		ttl: ttl,
	}, nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.cli.Close()
}

const deletedPrefix = "thoughts:deleted"

func key(id string) string {
	return fmt.Sprintf("%s:%s", deletedPrefix, id)
}

// Deleted reports whether id was marked deleted.
func (r *Redis) Deleted(ctx context.Context, id string) (bool, error) {
	n, err := r.cli.Exists(ctx, key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	return n > 0, nil
}

// MarkDeleted stores id under thoughts:deleted:ID with the cache ttl.
func (r *Redis) MarkDeleted(ctx context.Context, id string) error {
	if err := r.cli.Set(ctx, key(id), 1, r.ttl).Err(); err != nil {
		return fmt.Errorf("set: %w", err)
	}
	return nil
}

// Flush removes every deleted id. Other keys in the database are left alone.
func (r *Redis) Flush(ctx context.Context) error {
	iter := r.cli.Scan(ctx, 0, deletedPrefix+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.cli.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("del: %w", err)
	}
	return nil
}
