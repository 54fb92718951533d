// Package payments deriva los pagos de una inversión de confirming con anticipo
// y ejecuta los pagos programados que ya vencieron.
package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/factoring-api/internal/application/dto"
	"github.com/jhoicas/factoring-api/internal/application/parties"
	"github.com/jhoicas/factoring-api/internal/domain"
	"github.com/jhoicas/factoring-api/internal/domain/entity"
	"github.com/jhoicas/factoring-api/internal/domain/financing"
	"github.com/jhoicas/factoring-api/internal/domain/repository"
	"github.com/jhoicas/factoring-api/pkg/logger"
)

// DerivationUseCase genera el pago al proveedor y el cobro a la empresa de una inversión.
type DerivationUseCase struct {
	txRunner    FundingTxRunner
	investments repository.InvestmentRepository
	invoices    repository.InvoiceRepository
	parties     *parties.Resolver
	log         *logger.Logger
	now         func() time.Time
}

// NewDerivationUseCase construye el caso de uso.
func NewDerivationUseCase(
	txRunner FundingTxRunner,
	investments repository.InvestmentRepository,
	invoices repository.InvoiceRepository,
	resolver *parties.Resolver,
	log *logger.Logger,
) *DerivationUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &DerivationUseCase{
		txRunner:    txRunner,
		investments: investments,
		invoices:    invoices,
		parties:     resolver,
		log:         log.WithComponent("payments"),
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *DerivationUseCase) WithClock(now func() time.Time) *DerivationUseCase {
	uc.now = now
	return uc
}

// Derive valida las precondiciones y crea ambos pagos en una única transacción.
func (uc *DerivationUseCase) Derive(ctx context.Context, investmentID string) ([]dto.PaymentResponse, error) {
	if investmentID == "" {
		return nil, domain.ErrInvalidInput
	}
	investment, err := uc.investments.GetByID(ctx, investmentID)
	if err != nil {
		return nil, fmt.Errorf("obtener inversión: %w", err)
	}
	if investment == nil {
		return nil, domain.ErrNotFound
	}
	invoice, err := uc.invoices.GetByID(ctx, investment.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("obtener factura: %w", err)
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	if err := checkPreconditions(invoice); err != nil {
		return nil, err
	}
	owner, err := uc.parties.CompanyOwner(ctx, invoice)
	if err != nil {
		return nil, err
	}

	var created []*entity.Payment
	err = uc.txRunner.RunFunding(ctx, func(_ repository.InvestmentRepository, _ repository.InvoiceRepository, paymentRepo repository.PaymentRepository) error {
		var err error
		created, err = DeriveInTx(ctx, paymentRepo, investment, invoice, owner.ID, uc.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("investment_id", investment.ID).Str("invoice_id", invoice.ID).Int("payments", len(created)).Msg("pagos derivados")

	out := make([]dto.PaymentResponse, 0, len(created))
	for _, p := range created {
		out = append(out, ToPaymentResponse(p))
	}
	return out, nil
}

// DeriveInTx crea el pago al proveedor y el cobro a la empresa con paymentRepo, que debe estar
// atado a la transacción del llamador. Si la inversión ya tiene pagos devuelve domain.ErrConflict.
func DeriveInTx(
	ctx context.Context,
	paymentRepo repository.PaymentRepository,
	investment *entity.Investment,
	invoice *entity.Invoice,
	companyUserID string,
	now time.Time,
) ([]*entity.Payment, error) {
	if err := checkPreconditions(invoice); err != nil {
		return nil, err
	}
	if companyUserID == "" {
		return nil, domain.ErrCompanyUserMissing
	}
	existing, err := paymentRepo.ListByInvestment(ctx, investment.ID)
	if err != nil {
		return nil, fmt.Errorf("listar pagos de la inversión: %w", err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: la inversión %s ya tiene pagos derivados", domain.ErrConflict, investment.ID)
	}

	supplier := supplierPayment(investment, invoice, now)
	charge := companyCharge(investment, invoice, companyUserID, now)
	for _, p := range []*entity.Payment{supplier, charge} {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		if err := paymentRepo.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("crear pago %s: %w", p.Type, err)
		}
	}
	return []*entity.Payment{supplier, charge}, nil
}

func checkPreconditions(invoice *entity.Invoice) error {
	if invoice.OperationType != entity.OperationConfirming {
		return domain.ErrNotConfirming
	}
	if !invoice.IsConfirmingAdvance() {
		return domain.ErrAdvanceNotRequested
	}
	return nil
}

// supplierPayment desembolso inmediato del inversionista al proveedor, con descuento por pronto pago.
func supplierPayment(investment *entity.Investment, invoice *entity.Invoice, now time.Time) *entity.Payment {
	terms := invoice.Confirming
	amount := financing.DiscountedAmount(invoice.Amount, financing.OrZero(terms.EarlyPaymentDiscount))
	discount := invoice.Amount.Sub(amount)

	supplierName := terms.SupplierName
	if supplierName == "" {
		supplierName = entity.SupplierPlaceholder
	}
	return &entity.Payment{
		ID:                 uuid.New().String(),
		InvestmentID:       investment.ID,
		InvoiceID:          invoice.ID,
		PayerID:            investment.UserID,
		Type:               entity.PaymentTypeToSupplier,
		Amount:             amount,
		OriginalAmount:     invoice.Amount,
		DiscountPercentage: terms.EarlyPaymentDiscount,
		ScheduledDate:      now,
		Status:             entity.PaymentStatusPending,
		Metadata: entity.PaymentMetadata{
			OperationType:         invoice.OperationType,
			AdvanceRequest:        terms.AdvanceRequest,
			OriginalInvoiceAmount: invoice.Amount,
			DiscountApplied:       &discount,
			SupplierName:          supplierName,
			SupplierTaxID:         terms.SupplierTaxID,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// companyCharge reembolso de la empresa al inversionista al vencimiento, con comisión.
func companyCharge(investment *entity.Investment, invoice *entity.Invoice, companyUserID string, now time.Time) *entity.Payment {
	terms := invoice.Confirming
	amount := financing.ChargedAmount(invoice.Amount, financing.OrZero(terms.ConfirmingCommission))
	commission := amount.Sub(invoice.Amount)
	payee := investment.UserID

	return &entity.Payment{
		ID:                   uuid.New().String(),
		InvestmentID:         investment.ID,
		InvoiceID:            invoice.ID,
		PayerID:              companyUserID,
		PayeeID:              &payee,
		Type:                 entity.PaymentTypeChargeToCompany,
		Amount:               amount,
		OriginalAmount:       invoice.Amount,
		CommissionPercentage: terms.ConfirmingCommission,
		ScheduledDate:        invoice.DueDate,
		Status:               entity.PaymentStatusPending,
		Metadata: entity.PaymentMetadata{
			OperationType:         invoice.OperationType,
			AdvanceRequest:        terms.AdvanceRequest,
			OriginalInvoiceAmount: invoice.Amount,
			CommissionApplied:     &commission,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
