package repository

import (
	"context"
	"time"

	"github.com/jhoicas/factoring-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para Invoice.
// El alta y la verificación de facturas viven fuera de este servicio; aquí solo se leen
// y se avanza su estado cuando se financian o pagan.
type InvoiceRepository interface {
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Invoice, error)
	// UpdateStatus cambia el estado solo si el actual es from. Devuelve false si no hubo fila.
	UpdateStatus(ctx context.Context, id string, from, to entity.InvoiceStatus, at time.Time) (bool, error)
}
