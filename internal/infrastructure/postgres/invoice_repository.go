package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/factoring-api/internal/domain/entity"
	"github.com/jhoicas/factoring-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, company_id, number, amount, operation_type, status, due_date,
	supplier_name, supplier_tax_id, early_payment_discount, confirming_commission, advance_request,
	created_at, updated_at`

// GetByID obtiene una factura por ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// ListByCompany lista las facturas de una empresa, más recientes primero.
func (r *InvoiceRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM invoices WHERE company_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// UpdateStatus cambia el estado solo si el actual es from.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, id string, from, to entity.InvoiceStatus, at time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE invoices SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`,
		id, string(from), string(to), at,
	)
	if err != nil {
		return false, fmt.Errorf("update invoice status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*entity.Invoice, error) {
	var (
		inv                  entity.Invoice
		opType, status       string
		supplierName, taxID  *string
		discount, commission *decimal.Decimal
		advanceRequest       *bool
	)
	if err := row.Scan(
		&inv.ID, &inv.CompanyID, &inv.Number, &inv.Amount, &opType, &status, &inv.DueDate,
		&supplierName, &taxID, &discount, &commission, &advanceRequest,
		&inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}
	var err error
	if inv.OperationType, err = entity.ParseOperationType(opType); err != nil {
		return nil, err
	}
	if inv.Status, err = entity.ParseInvoiceStatus(status); err != nil {
		return nil, err
	}
	if inv.OperationType == entity.OperationConfirming {
		inv.Confirming = &entity.ConfirmingTerms{
			SupplierName:         derefStr(supplierName),
			SupplierTaxID:        derefStr(taxID),
			EarlyPaymentDiscount: discount,
			ConfirmingCommission: commission,
			AdvanceRequest:       advanceRequest != nil && *advanceRequest,
		}
	}
	return &inv, nil
}
