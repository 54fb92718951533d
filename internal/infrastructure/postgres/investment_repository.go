package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/factoring-api/internal/domain"
	"github.com/jhoicas/factoring-api/internal/domain/entity"
	"github.com/jhoicas/factoring-api/internal/domain/repository"
)

var _ repository.InvestmentRepository = (*InvestmentRepo)(nil)

// InvestmentRepo implementación de InvestmentRepository (usable con pool o tx).
type InvestmentRepo struct {
	q Querier
}

// NewInvestmentRepository construye el adaptador.
func NewInvestmentRepository(q Querier) *InvestmentRepo {
	return &InvestmentRepo{q: q}
}

const investmentColumns = `
	id, user_id, invoice_id, proposal_id, amount, expected_return, actual_return, return_rate,
	investment_date, maturity_date, status, created_at, updated_at`

// Create persiste una inversión nueva. Una factura admite una sola inversión.
func (r *InvestmentRepo) Create(ctx context.Context, inv *entity.Investment) error {
	query := `
		INSERT INTO investments (` + investmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.UserID, inv.InvoiceID, inv.ProposalID, inv.Amount, inv.ExpectedReturn, inv.ActualReturn,
		inv.ReturnRate, inv.InvestmentDate, inv.MaturityDate, string(inv.Status), inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("investment for invoice %s: %w", inv.InvoiceID, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert investment: %w", err)
	}
	return nil
}

// GetByID obtiene una inversión por ID.
func (r *InvestmentRepo) GetByID(ctx context.Context, id string) (*entity.Investment, error) {
	inv, err := scanInvestment(r.q.QueryRow(ctx, `SELECT `+investmentColumns+` FROM investments WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get investment: %w", err)
	}
	return inv, nil
}

// ListByUser lista las inversiones de un inversionista, más recientes primero.
func (r *InvestmentRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Investment, error) {
	query := `SELECT ` + investmentColumns + `
		FROM investments WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	defer rows.Close()

	var list []*entity.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan investment: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// UpdateStatus persiste estado y rendimiento real solo si el estado actual es from.
func (r *InvestmentRepo) UpdateStatus(ctx context.Context, inv *entity.Investment, from entity.InvestmentStatus) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE investments SET status = $3, actual_return = $4, updated_at = $5 WHERE id = $1 AND status = $2`,
		inv.ID, string(from), string(inv.Status), inv.ActualReturn, inv.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("update investment status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanInvestment(row rowScanner) (*entity.Investment, error) {
	var (
		inv    entity.Investment
		status string
	)
	if err := row.Scan(
		&inv.ID, &inv.UserID, &inv.InvoiceID, &inv.ProposalID, &inv.Amount, &inv.ExpectedReturn, &inv.ActualReturn,
		&inv.ReturnRate, &inv.InvestmentDate, &inv.MaturityDate, &status, &inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}
	var err error
	if inv.Status, err = entity.ParseInvestmentStatus(status); err != nil {
		return nil, err
	}
	return &inv, nil
}
