package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
	"vidmarket/infrastructure/logger"
)

// NewCache connects a Redis client and verifies it with a ping.
func NewCache(ctx context.Context, addr, username, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while connecting to Redis")
		return nil, err
	}
	return client, nil
}
