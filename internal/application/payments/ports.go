package payments

import (
	"context"

	"github.com/jhoicas/factoring-api/internal/domain/entity"
	"github.com/jhoicas/factoring-api/internal/domain/repository"
)

// FundingTxRunner ejecuta fn dentro de una transacción con los repositorios de inversión,
// factura y pagos atados a ella. Garantiza que una derivación es todo o nada.
type FundingTxRunner interface {
	RunFunding(ctx context.Context, fn func(
		investmentRepo repository.InvestmentRepository,
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
	) error) error
}

// VoucherGenerator genera el comprobante PDF de un pago.
type VoucherGenerator interface {
	PaymentVoucher(p *entity.Payment, invoice *entity.Invoice) ([]byte, error)
}
