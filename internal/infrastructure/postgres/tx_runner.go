package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/factoring-api/internal/application/payments"
	"github.com/jhoicas/factoring-api/internal/application/proposal"
	"github.com/jhoicas/factoring-api/internal/domain/repository"
)

// Ensure TxRunner implements proposal.TxRunner and payments.FundingTxRunner.
var _ proposal.TxRunner = (*TxRunner)(nil)
var _ payments.FundingTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunProposals inicia una transacción con el repositorio de propuestas (contraofertas).
func (r *TxRunner) RunProposals(ctx context.Context, fn func(proposalRepo repository.ProposalRepository) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewProposalRepository(tx))
	})
}

// RunFunding inicia una transacción con repos de inversión, factura y pagos
// (financiación de propuestas y derivación de pagos).
func (r *TxRunner) RunFunding(ctx context.Context, fn func(
	investmentRepo repository.InvestmentRepository,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewInvestmentRepository(tx), NewInvoiceRepository(tx), NewPaymentRepository(tx))
	})
}

// run hace Begin, ejecuta fn y Commit; cualquier error o panic deja la transacción en Rollback.
func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
