package redisclient

import (
	"thread-digest/internal/config"

	"github.com/redis/go-redis/v9"
)

// New creates a Redis client from configuration.
// It returns nil when redis is disabled, so callers can skip persistence.
func New(cfg config.RedisConfig) *redis.Client {
	if !cfg.Enabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
