package dedup

import (
	"context"
	"time"

	"bayou-blog/internal/utils"

	"github.com/redis/go-redis/v9"
)

// Window TTL mirrors the original 30-day viewer cookie lifetime.
const windowTTL = 30 * 24 * time.Hour

// RedisDeduplicator keeps each client's window in a Redis list, one key per
// client token. Presence is checked with LPOS; recording is RPUSH + LTRIM
// so the list keeps only the most recent WindowSize entries.
type RedisDeduplicator struct {
	client *redis.Client
}

func NewRedisDeduplicator(client *redis.Client) *RedisDeduplicator {
	return &RedisDeduplicator{client: client}
}

// Connect dials Redis and verifies the connection.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

func (d *RedisDeduplicator) ShouldCount(ctx context.Context, clientToken string, postID string) (bool, error) {
	key := "viewed:" + clientToken

	err := d.client.LPos(ctx, key, postID, redis.LPosArgs{}).Err()
	if err == nil {
		return false, nil
	}
	if err != redis.Nil {
		return false, utils.NewUnavailableError("view dedup", err)
	}

	pipe := d.client.TxPipeline()
	pipe.RPush(ctx, key, postID)
	pipe.LTrim(ctx, key, int64(-WindowSize), -1)
	pipe.Expire(ctx, key, windowTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, utils.NewUnavailableError("view dedup", err)
	}
	return true, nil
}
