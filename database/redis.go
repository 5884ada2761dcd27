package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"student-progress-dashboard/config"
	"student-progress-dashboard/utils"
)

var RedisClient *redis.Client

// ConnectRedis opens the cache client. It leaves RedisClient nil when no
// address is configured.
func ConnectRedis(cfg config.RedisConfig) error {
	if cfg.Addr == "" {
		utils.LogInfo("REDIS_ADDR not set, dashboard cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("ping redis: %w", err)
	}

	RedisClient = client
	utils.LogSuccess("Connected to Redis %s", cfg.Addr)
	return nil
}
