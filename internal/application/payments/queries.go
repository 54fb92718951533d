package payments

import (
	"context"
	"fmt"

	"github.com/jhoicas/factoring-api/internal/application/dto"
	"github.com/jhoicas/factoring-api/internal/domain"
	"github.com/jhoicas/factoring-api/internal/domain/entity"
	"github.com/jhoicas/factoring-api/internal/domain/repository"
)

// QueryUseCase consultas de pagos y comprobantes.
// Ve un pago el administrador, el inversionista de la inversión o la empresa de la factura.
type QueryUseCase struct {
	payments    repository.PaymentRepository
	investments repository.InvestmentRepository
	invoices    repository.InvoiceRepository
	vouchers    VoucherGenerator
}

// NewQueryUseCase construye el caso de uso. vouchers puede ser nil si no se sirven comprobantes.
func NewQueryUseCase(payments repository.PaymentRepository, investments repository.InvestmentRepository, invoices repository.InvoiceRepository, vouchers VoucherGenerator) *QueryUseCase {
	return &QueryUseCase{payments: payments, investments: investments, invoices: invoices, vouchers: vouchers}
}

// ListByInvestment pagos derivados de una inversión.
func (uc *QueryUseCase) ListByInvestment(ctx context.Context, actor dto.Actor, investmentID string) ([]dto.PaymentResponse, error) {
	investment, err := uc.investments.GetByID(ctx, investmentID)
	if err != nil {
		return nil, fmt.Errorf("obtener inversión: %w", err)
	}
	if investment == nil {
		return nil, domain.ErrNotFound
	}
	invoice, err := uc.invoice(ctx, investment.InvoiceID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, investment, invoice) {
		return nil, domain.ErrForbidden
	}
	list, err := uc.payments.ListByInvestment(ctx, investmentID)
	if err != nil {
		return nil, fmt.Errorf("listar pagos: %w", err)
	}
	out := make([]dto.PaymentResponse, 0, len(list))
	for _, p := range list {
		out = append(out, ToPaymentResponse(p))
	}
	return out, nil
}

// Get devuelve un pago.
func (uc *QueryUseCase) Get(ctx context.Context, actor dto.Actor, id string) (*dto.PaymentResponse, error) {
	p, _, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(p)
	return &resp, nil
}

// Voucher genera el comprobante PDF de un pago ejecutado.
func (uc *QueryUseCase) Voucher(ctx context.Context, actor dto.Actor, id string) ([]byte, error) {
	if uc.vouchers == nil {
		return nil, fmt.Errorf("generador de comprobantes no configurado")
	}
	p, invoice, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if p.Status != entity.PaymentStatusExecuted {
		return nil, fmt.Errorf("%w: el pago %s está en estado %s", domain.ErrConflict, p.ID, p.Status)
	}
	return uc.vouchers.PaymentVoucher(p, invoice)
}

func (uc *QueryUseCase) load(ctx context.Context, actor dto.Actor, id string) (*entity.Payment, *entity.Invoice, error) {
	if id == "" {
		return nil, nil, domain.ErrInvalidInput
	}
	p, err := uc.payments.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("obtener pago: %w", err)
	}
	if p == nil {
		return nil, nil, domain.ErrNotFound
	}
	investment, err := uc.investments.GetByID(ctx, p.InvestmentID)
	if err != nil {
		return nil, nil, fmt.Errorf("obtener inversión: %w", err)
	}
	if investment == nil {
		return nil, nil, domain.ErrNotFound
	}
	invoice, err := uc.invoice(ctx, p.InvoiceID)
	if err != nil {
		return nil, nil, err
	}
	if !canView(actor, investment, invoice) {
		return nil, nil, domain.ErrForbidden
	}
	return p, invoice, nil
}

func (uc *QueryUseCase) invoice(ctx context.Context, id string) (*entity.Invoice, error) {
	invoice, err := uc.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener factura: %w", err)
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}

func canView(actor dto.Actor, investment *entity.Investment, invoice *entity.Invoice) bool {
	return actor.IsAdmin() ||
		(actor.Role == entity.RoleInvestor && actor.UserID == investment.UserID) ||
		actor.OwnsCompany(invoice.CompanyID)
}

// ToPaymentResponse mapea la entidad al DTO, con el monto neto recalculado.
func ToPaymentResponse(p *entity.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:                   p.ID,
		InvestmentID:         p.InvestmentID,
		InvoiceID:            p.InvoiceID,
		PayerID:              p.PayerID,
		PayeeID:              p.PayeeID,
		Type:                 string(p.Type),
		Amount:               p.Amount,
		NetAmount:            p.NetAmount(),
		OriginalAmount:       p.OriginalAmount,
		DiscountPercentage:   p.DiscountPercentage,
		CommissionPercentage: p.CommissionPercentage,
		ScheduledDate:        p.ScheduledDate,
		ExecutedDate:         p.ExecutedDate,
		Status:               string(p.Status),
		FailureReason:        p.FailureReason,
		TransferReference:    p.TransferReference,
		Metadata: dto.PaymentMetadata{
			OperationType:         string(p.Metadata.OperationType),
			AdvanceRequest:        p.Metadata.AdvanceRequest,
			OriginalInvoiceAmount: p.Metadata.OriginalInvoiceAmount,
			DiscountApplied:       p.Metadata.DiscountApplied,
			CommissionApplied:     p.Metadata.CommissionApplied,
			SupplierName:          p.Metadata.SupplierName,
			SupplierTaxID:         p.Metadata.SupplierTaxID,
		},
	}
}
