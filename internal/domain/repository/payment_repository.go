package repository

import (
	"context"
	"time"

	"github.com/jhoicas/factoring-api/internal/domain/entity"
)

// PaymentRepository define el puerto de persistencia para Payment.
type PaymentRepository interface {
	Create(ctx context.Context, p *entity.Payment) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Payment, error)
	ListByInvestment(ctx context.Context, investmentID string) ([]*entity.Payment, error)
	// ListDue pagos con status=pending y scheduled_date <= now, en orden de programación.
	ListDue(ctx context.Context, now time.Time) ([]*entity.Payment, error)
	// Claim reserva el pago antes de transferir: status=pending y sin reserva vigente
	// (claimed_at nulo o anterior a now-lease). Devuelve false si otro proceso lo tiene.
	Claim(ctx context.Context, id string, now time.Time, lease time.Duration) (bool, error)
	// MarkExecuted y MarkFailed son actualizaciones condicionadas a status=pending.
	// Devuelven false si otro proceso ya cerró el pago.
	MarkExecuted(ctx context.Context, id, reference string, at time.Time) (bool, error)
	MarkFailed(ctx context.Context, id, reason string, at time.Time) (bool, error)
}
