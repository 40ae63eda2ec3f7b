package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ConnectRedisWithRetry returns a client and lock client for addr.
// Redis is optional: an empty addr yields (nil, nil, nil) and callers run without cache or locks.
func ConnectRedisWithRetry(ctx context.Context, addr string) (*redis.Client, *redislock.Client, error) {
	if addr == "" {
		log.Printf("REDIS_ADDRESS is empty; running without redis")
		return nil, nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	var attempt int
	for {
		attempt++
		if err := rdb.Ping(ctx).Err(); err == nil {
			log.Printf("connected to redis (attempt=%d addr=%s)", attempt, addr)
			return rdb, redislock.New(rdb), nil
		} else {
			sleep := time.Second * time.Duration(1<<min(attempt, 5))
			if sleep > 30*time.Second {
				sleep = 30 * time.Second
			}
			log.Printf("failed to connect redis (attempt=%d addr=%s): %v; retrying in %s", attempt, addr, err, sleep)
			select {
			case <-ctx.Done():
				_ = rdb.Close()
				return nil, nil, fmt.Errorf("connect redis: %w", ctx.Err())
			case <-time.After(sleep):
			}
		}
	}
}
