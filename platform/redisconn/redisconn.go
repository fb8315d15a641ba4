// Package redisconn provides Redis connection infrastructure.
// This is part of the platform layer and contains no business logic.
package redisconn

import (
	"context"
	"crypto/tls"
	"time"

	"farebridge_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

// NewClient creates a Redis client from the configured URL and verifies
// connectivity with a ping.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}

	if cfg.GetRedisTLSInsecure() {
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{}
		}
		opt.TLSConfig.InsecureSkipVerify = true
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// Pinger adapts a redis client to the readiness-check interface.
type Pinger struct {
	Client *redis.Client
}

// Ping verifies the Redis connection is alive.
func (p Pinger) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx).Err()
}
