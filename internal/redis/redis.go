package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect opens the client used for table snapshots. An empty URL disables
// snapshots and returns a nil client without error.
func Connect(redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		log.Printf("[REDIS] REDIS_URL not set, table snapshots disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Printf("[REDIS] Connected to %s", opt.Addr)
	return client, nil
}
