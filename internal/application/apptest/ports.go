package apptest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/factoring-api/internal/application/ports"
	"github.com/jhoicas/factoring-api/internal/domain"
)

// Notifier registra los eventos recibidos. Err, si no es nil, se devuelve en cada llamada.
type Notifier struct {
	mu     sync.Mutex
	Events []ports.NotificationEvent
	Err    error
}

func (n *Notifier) Notify(_ context.Context, ev ports.NotificationEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Events = append(n.Events, ev)
	return n.Err
}

// Last último evento recibido.
func (n *Notifier) Last() (ports.NotificationEvent, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Events) == 0 {
		return ports.NotificationEvent{}, false
	}
	return n.Events[len(n.Events)-1], true
}

// Mover pasarela simulada. Falla los pagos cuyo id está en FailFor.
type Mover struct {
	mu       sync.Mutex
	FailFor  map[string]error
	Requests []ports.TransferRequest
}

func (m *Mover) Transfer(_ context.Context, req ports.TransferRequest) (*ports.TransferReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)
	if err, ok := m.FailFor[req.IdempotencyKey]; ok {
		return nil, err
	}
	return &ports.TransferReceipt{Reference: fmt.Sprintf("TRX-%03d", len(m.Requests))}, nil
}

// Calls cantidad de transferencias solicitadas.
func (m *Mover) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// Locker candado en proceso con la misma semántica que el distribuido.
type Locker struct {
	mu   sync.Mutex
	held map[string]bool
}

func (l *Locker) Acquire(_ context.Context, key string, _ time.Duration) (ports.ReleaseFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[key] {
		return nil, domain.ErrSweepInProgress
	}
	l.held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}, nil
}
