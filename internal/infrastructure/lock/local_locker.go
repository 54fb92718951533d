package lock

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/factoring-api/internal/application/ports"
	"github.com/jhoicas/factoring-api/internal/domain"
)

var _ ports.Locker = (*LocalLocker)(nil)

// LocalLocker candado dentro del proceso, para una sola instancia sin Redis.
// Respeta el TTL igual que el candado distribuido.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

// NewLocalLocker construye el candado en memoria.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]time.Time), now: time.Now}
}

// Acquire toma la clave si está libre o si su TTL ya venció.
func (l *LocalLocker) Acquire(_ context.Context, key string, ttl time.Duration) (ports.ReleaseFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if until, ok := l.held[key]; ok && now.Before(until) {
		return nil, domain.ErrSweepInProgress
	}
	until := now.Add(ttl)
	l.held[key] = until

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		// solo libera si sigue siendo el mismo dueño
		if l.held[key].Equal(until) {
			delete(l.held, key)
		}
		return nil
	}, nil
}
