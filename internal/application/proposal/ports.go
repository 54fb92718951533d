package proposal

import (
	"context"

	"github.com/jhoicas/factoring-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con el repositorio de propuestas atado a ella.
// Se usa para la contraoferta: actualizar la propuesta origen e insertar la nueva es atómico.
type TxRunner interface {
	RunProposals(ctx context.Context, fn func(proposalRepo repository.ProposalRepository) error) error
}
