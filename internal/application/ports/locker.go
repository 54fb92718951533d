package ports

import (
	"context"
	"time"
)

// ReleaseFunc libera un candado obtenido con Locker.Acquire.
type ReleaseFunc func(ctx context.Context) error

// Locker exclusión mutua entre procesos para los trabajos programados.
// Si el candado está tomado devuelve domain.ErrSweepInProgress.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error)
}
