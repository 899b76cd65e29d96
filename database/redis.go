package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

// LastPostIDKey holds the id of the last post a notification run has taken.
const LastPostIDKey = "post_manager:func:send_posts:last_post_id"

// InitRedis connects to addr and checks the connection.
func InitRedis(ctx context.Context, addr, password string, dbIndex int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       dbIndex,
	})
	pong, err := rdb.Ping(ctx).Result()
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.FromContext(ctx).Debug("Redis connected", "addr", addr, "ping", pong)
	return rdb, nil
}

// RedisWatermark stores the dispatch watermark in a single Redis key.
type RedisWatermark struct {
	rdb *redis.Client
	key string
}

func NewRedisWatermark(rdb *redis.Client) *RedisWatermark {
	return &RedisWatermark{rdb: rdb, key: LastPostIDKey}
}

func (w *RedisWatermark) Get(ctx context.Context) (uint, bool, error) {
	v, err := w.rdb.Get(ctx, w.key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read watermark: %w", err)
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid watermark %q: %w", v, err)
	}
	return uint(id), true, nil
}

func (w *RedisWatermark) Set(ctx context.Context, id uint) error {
	if err := w.rdb.Set(ctx, w.key, strconv.FormatUint(uint64(id), 10), 0).Err(); err != nil {
		return fmt.Errorf("failed to store watermark: %w", err)
	}
	return nil
}
