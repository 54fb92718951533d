package repository

import (
	"context"
	"time"

	"github.com/jhoicas/factoring-api/internal/domain/entity"
)

// ProposalFilter criterios de listado de propuestas. Campos vacíos no filtran.
type ProposalFilter struct {
	InvestorID string
	InvoiceID  string
	CompanyID  string // propuestas sobre facturas de la empresa
	Statuses   []entity.ProposalStatus
	Limit      int
	Offset     int
}

// ProposalRepository define el puerto de persistencia para InvestmentProposal.
type ProposalRepository interface {
	Create(ctx context.Context, p *entity.InvestmentProposal) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.InvestmentProposal, error)
	List(ctx context.Context, f ProposalFilter) ([]*entity.InvestmentProposal, error)
	// UpdateTransition escribe estado, marcas de tiempo y textos de respuesta en una sola
	// sentencia, solo si el estado actual está en expected. Devuelve false si no hubo fila.
	UpdateTransition(ctx context.Context, p *entity.InvestmentProposal, expected []entity.ProposalStatus) (bool, error)
	// Chain devuelve la cadena completa de contraofertas a la que pertenece id, desde la raíz.
	Chain(ctx context.Context, id string) ([]*entity.InvestmentProposal, error)
	// ListExpirable propuestas sent/pending con expires_at <= now.
	ListExpirable(ctx context.Context, now time.Time) ([]*entity.InvestmentProposal, error)
}
