package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tlettesaid-hue/secret-chat-1/internal/config"
	"go.uber.org/zap"
)

func NewRedis(cfg *config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Connected to Redis",
		zap.String("addr", cfg.GetAddr()),
		zap.Int("db", cfg.DB),
	)

	return client, nil
}

// Close closes the Redis connection
func Close(client *redis.Client, logger *zap.Logger) {
	if err := client.Close(); err != nil {
		logger.Error("Error closing Redis connection", zap.Error(err))
	} else {
		logger.Info("Redis connection closed")
	}
}

// Key layout. Room event channels carry the realtime fan-out between
// instances; the rate-limit keys back the sliding-window limiter.
const (
	KeyRoomEvents  = "room:%s"         // room:{code} pub/sub channel
	KeyRateLimitIP = "ratelimit:ip:%s" // ratelimit:ip:{ip}
)

// RoomChannel returns the pub/sub channel name for a room code.
func RoomChannel(code string) string {
	return fmt.Sprintf(KeyRoomEvents, code)
}
