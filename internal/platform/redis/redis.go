// Package redis opens the Redis connection shared by the idempotency store and the
// notification queue.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// Options locate the Redis instance.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether an address was configured.
func (o Options) Enabled() bool {
	return strings.TrimSpace(o.Addr) != ""
}

// AsynqOpt returns the same connection settings for asynq clients and servers.
func (o Options) AsynqOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: o.Addr, Password: o.Password, DB: o.DB}
}

// Open connects and pings Redis.
func Open(ctx context.Context, opts Options) (*goredis.Client, error) {
	if !opts.Enabled() {
		return nil, errors.New("redis address is required")
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}
