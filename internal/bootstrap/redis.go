package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appcfg "github.com/mfahadasghar/flow-fund/config"
)

// OpenRedis connects the event publisher's client. Redis is a live
// view layer here, not the source of truth, but the service still
// fails fast so a dead broker is noticed at boot.
func OpenRedis(ctx context.Context, cfg appcfg.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}
