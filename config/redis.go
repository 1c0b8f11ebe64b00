package config

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ConnectRedis returns nil when Redis is not configured or unreachable; callers
// then run without the report cache
func ConnectRedis(ctx context.Context, s *Settings, log *zap.Logger) *redis.Client {
	if s.RedisAddr == "" {
		log.Info("REDIS_ADDR not set, report cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         s.RedisAddr,
		Password:     s.RedisPassword,
		DB:           s.RedisDB,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Warn("redis connection failed, report cache disabled", zap.Error(err))
		_ = client.Close()
		return nil
	}

	log.Info("connected to Redis", zap.String("addr", s.RedisAddr))
	return client
}
