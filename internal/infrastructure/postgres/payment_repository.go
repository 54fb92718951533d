package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/factoring-api/internal/domain"
	"github.com/jhoicas/factoring-api/internal/domain/entity"
	"github.com/jhoicas/factoring-api/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo implementación de PaymentRepository (usable con pool o tx).
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador.
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

// metadata es JSONB: pgx serializa PaymentMetadata con sus tags json.
const paymentColumns = `
	id, investment_id, invoice_id, payer_id, payee_id, payment_type, amount, original_amount,
	discount_percentage, commission_percentage, scheduled_date, executed_date, status,
	failure_reason, transfer_reference, claimed_at, metadata, created_at, updated_at`

// Create persiste un pago programado.
func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.InvestmentID, p.InvoiceID, p.PayerID, p.PayeeID, string(p.Type), p.Amount, p.OriginalAmount,
		p.DiscountPercentage, p.CommissionPercentage, p.ScheduledDate, p.ExecutedDate, string(p.Status),
		nullIfEmpty(p.FailureReason), nullIfEmpty(p.TransferReference), p.ClaimedAt, p.Metadata, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("payment %s for investment %s: %w", p.Type, p.InvestmentID, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID obtiene un pago por ID.
func (r *PaymentRepo) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	p, err := scanPayment(r.q.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// ListByInvestment pagos de una inversión en orden de programación.
func (r *PaymentRepo) ListByInvestment(ctx context.Context, investmentID string) ([]*entity.Payment, error) {
	return r.query(ctx, `SELECT `+paymentColumns+`
		FROM payments WHERE investment_id = $1 ORDER BY scheduled_date, created_at`, investmentID)
}

// ListDue pagos pendientes cuya fecha programada ya llegó.
func (r *PaymentRepo) ListDue(ctx context.Context, now time.Time) ([]*entity.Payment, error) {
	return r.query(ctx, `SELECT `+paymentColumns+`
		FROM payments WHERE status = $1 AND scheduled_date <= $2 ORDER BY scheduled_date, created_at`,
		string(entity.PaymentStatusPending), now)
}

// Claim toma la reserva del pago con una actualización condicionada; la fila solo la gana un proceso.
func (r *PaymentRepo) Claim(ctx context.Context, id string, now time.Time, lease time.Duration) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE payments
		SET claimed_at = $2
		WHERE id = $1 AND status = $3 AND (claimed_at IS NULL OR claimed_at < $4)`,
		id, now, string(entity.PaymentStatusPending), now.Add(-lease),
	)
	if err != nil {
		return false, fmt.Errorf("claim payment: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkExecuted pending → executed con la referencia de la transferencia.
func (r *PaymentRepo) MarkExecuted(ctx context.Context, id, reference string, at time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE payments
		SET status = $2, transfer_reference = $3, executed_date = $4, updated_at = $4
		WHERE id = $1 AND status = $5`,
		id, string(entity.PaymentStatusExecuted), reference, at, string(entity.PaymentStatusPending),
	)
	if err != nil {
		return false, fmt.Errorf("mark payment executed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkFailed pending → failed con el motivo; executed_date queda nulo.
func (r *PaymentRepo) MarkFailed(ctx context.Context, id, reason string, at time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE payments
		SET status = $2, failure_reason = $3, updated_at = $4
		WHERE id = $1 AND status = $5`,
		id, string(entity.PaymentStatusFailed), reason, at, string(entity.PaymentStatusPending),
	)
	if err != nil {
		return false, fmt.Errorf("mark payment failed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PaymentRepo) query(ctx context.Context, query string, args ...any) ([]*entity.Payment, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var list []*entity.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanPayment(row rowScanner) (*entity.Payment, error) {
	var (
		p                    entity.Payment
		paymentType, status  string
		failure, transferRef *string
	)
	if err := row.Scan(
		&p.ID, &p.InvestmentID, &p.InvoiceID, &p.PayerID, &p.PayeeID, &paymentType, &p.Amount, &p.OriginalAmount,
		&p.DiscountPercentage, &p.CommissionPercentage, &p.ScheduledDate, &p.ExecutedDate, &status,
		&failure, &transferRef, &p.ClaimedAt, &p.Metadata, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	var err error
	if p.Type, err = entity.ParsePaymentType(paymentType); err != nil {
		return nil, err
	}
	if p.Status, err = entity.ParsePaymentStatus(status); err != nil {
		return nil, err
	}
	p.FailureReason = derefStr(failure)
	p.TransferReference = derefStr(transferRef)
	return &p, nil
}
