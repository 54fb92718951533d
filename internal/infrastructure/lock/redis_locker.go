package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/jhoicas/factoring-api/internal/application/ports"
	"github.com/jhoicas/factoring-api/internal/domain"
	"github.com/jhoicas/factoring-api/pkg/config"
	"github.com/redis/go-redis/v9"
)

var _ ports.Locker = (*RedisLocker)(nil)

// RedisLocker candado distribuido sobre Redis (bsm/redislock).
type RedisLocker struct {
	client *redislock.Client
}

// NewRedisClient abre el cliente y verifica la conexión.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// NewRedisLocker construye el candado sobre un cliente ya conectado.
func NewRedisLocker(rdb redislock.RedisClient) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb)}
}

// Acquire intenta una sola vez; si otro proceso tiene la clave devuelve ErrSweepInProgress.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (ports.ReleaseFunc, error) {
	lk, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, domain.ErrSweepInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	return func(ctx context.Context) error {
		if err := lk.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return fmt.Errorf("release lock %s: %w", key, err)
		}
		return nil
	}, nil
}
