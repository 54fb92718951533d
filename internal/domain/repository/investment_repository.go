package repository

import (
	"context"

	"github.com/jhoicas/factoring-api/internal/domain/entity"
)

// InvestmentRepository define el puerto de persistencia para Investment.
type InvestmentRepository interface {
	Create(ctx context.Context, inv *entity.Investment) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Investment, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Investment, error)
	// UpdateStatus persiste estado y rendimiento real solo si el estado actual es from.
	UpdateStatus(ctx context.Context, inv *entity.Investment, from entity.InvestmentStatus) (bool, error)
}
