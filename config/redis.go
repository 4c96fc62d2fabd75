// stm-dashboard/config/redis.go
package config

import (
	"context"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client
var Ctx = context.Background()

// ConnectRedis is optional: without REDIS_ADDR the service runs with caching disabled.
func ConnectRedis() {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		slog.Warn("REDIS_ADDR not set, caching disabled")
		return
	}

	RDB = redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	if _, err := RDB.Ping(Ctx).Result(); err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		RDB = nil
		return
	}

	slog.Info("Connected to Redis")
}
