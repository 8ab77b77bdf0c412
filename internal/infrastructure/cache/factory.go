package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tradelog/backend/internal/domain/shared"
	"github.com/tradelog/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StoreOption is a functional option for NewIdempotencyStore
type StoreOption func(*storeOptions)

type storeOptions struct {
	logger                *zap.Logger
	allowInMemoryFallback bool
	pingTimeout           time.Duration
}

// WithLogger sets the logger used to report the chosen store
func WithLogger(logger *zap.Logger) StoreOption {
	return func(o *storeOptions) {
		o.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory store instead of failing startup. Default is false.
func WithInMemoryFallback(allow bool) StoreOption {
	return func(o *storeOptions) {
		o.allowInMemoryFallback = allow
	}
}

// NewIdempotencyStore builds the store selected by idempotency.store.
func NewIdempotencyStore(ctx context.Context, idem config.IdempotencyConfig, rc config.RedisConfig, opts ...StoreOption) (shared.IdempotencyStore, error) {
	o := storeOptions{logger: zap.NewNop(), pingTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	if idem.Store != "redis" {
		o.logger.Info("using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(0), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     rc.Addr(),
		Password: rc.Password,
		DB:       rc.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, o.pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		if !o.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
		}
		o.logger.Warn("Redis unavailable, falling back to in-memory idempotency store; "+
			"retries hitting another instance will not be deduplicated",
			zap.String("addr", rc.Addr()),
			zap.Error(err),
		)
		return NewInMemoryIdempotencyStore(0), nil
	}

	o.logger.Info("using Redis idempotency store", zap.String("addr", rc.Addr()))
	return NewRedisIdempotencyStore(client, DefaultKeyPrefix), nil
}
