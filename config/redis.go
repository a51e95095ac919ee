package config

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ConnectRedis returns nil when Redis cannot be reached; callers fall back to
// in-process storage.
func ConnectRedis(ctx context.Context, c *Config) *redis.Client {
	var opt *redis.Options
	if c.RedisURL != "" {
		parsed, err := redis.ParseURL(c.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("failed to parse REDIS_URL, running without redis")
			return nil
		}
		opt = parsed
	} else {
		opt = &redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       0,
		}
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis connection failed, running without redis")
		_ = client.Close()
		return nil
	}

	log.Info().Str("addr", opt.Addr).Msg("redis connected")
	return client
}
