package transfer

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/factoring-api/internal/application/ports"
	"github.com/jhoicas/factoring-api/pkg/logger"
)

var _ ports.MoneyMover = (*SimulatedMover)(nil)

// SimulatedMover modo dev: no mueve dinero, devuelve una referencia "SIM-..." y lo registra.
type SimulatedMover struct {
	log *logger.Logger
}

// NewSimulatedMover construye el adaptador de desarrollo.
func NewSimulatedMover(log *logger.Logger) *SimulatedMover {
	return &SimulatedMover{log: log.WithComponent("transfer")}
}

// Transfer siempre tiene éxito salvo que el contexto esté cancelado.
func (m *SimulatedMover) Transfer(ctx context.Context, req ports.TransferRequest) (*ports.TransferReceipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ref := "SIM-" + strings.ToUpper(uuid.NewString()[:8])
	m.log.Info().
		Str("payment_id", req.IdempotencyKey).
		Str("type", string(req.PaymentType)).
		Str("amount", req.Amount.StringFixed(2)).
		Str("reference", ref).
		Msg("transferencia simulada")
	return &ports.TransferReceipt{Reference: ref}, nil
}
