// Package funding convierte una propuesta aprobada en una inversión y cierra su ciclo de vida.
package funding

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/factoring-api/internal/application/dto"
	"github.com/jhoicas/factoring-api/internal/application/parties"
	"github.com/jhoicas/factoring-api/internal/application/payments"
	"github.com/jhoicas/factoring-api/internal/domain"
	"github.com/jhoicas/factoring-api/internal/domain/entity"
	"github.com/jhoicas/factoring-api/internal/domain/financing"
	"github.com/jhoicas/factoring-api/internal/domain/repository"
	"github.com/jhoicas/factoring-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// Acciones reportadas en domain.TransitionError.
const (
	ActionFund     = "fund"
	ActionComplete = "complete"
	ActionDefault  = "default"
)

// UseCase financiación de propuestas aprobadas.
type UseCase struct {
	txRunner    payments.FundingTxRunner
	proposals   repository.ProposalRepository
	investments repository.InvestmentRepository
	invoices    repository.InvoiceRepository
	parties     *parties.Resolver
	log         *logger.Logger
	now         func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner payments.FundingTxRunner,
	proposals repository.ProposalRepository,
	investments repository.InvestmentRepository,
	invoices repository.InvoiceRepository,
	resolver *parties.Resolver,
	log *logger.Logger,
) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		txRunner:    txRunner,
		proposals:   proposals,
		investments: investments,
		invoices:    invoices,
		parties:     resolver,
		log:         log.WithComponent("funding"),
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// FundProposal crea la inversión de una propuesta aprobada, marca la factura como financiada y,
// si es confirming con anticipo, deriva los pagos. Todo en una transacción.
func (uc *UseCase) FundProposal(ctx context.Context, actor dto.Actor, proposalID string) (*dto.InvestmentResponse, error) {
	if actor.Role != entity.RoleInvestor {
		return nil, domain.ErrForbidden
	}
	p, err := uc.proposals.GetByID(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("obtener propuesta: %w", err)
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if p.InvestorID != actor.UserID {
		return nil, domain.ErrForbidden
	}
	if p.Status != entity.ProposalStatusApproved {
		return nil, domain.NewTransitionError(ActionFund, string(p.Status))
	}
	invoice, err := uc.invoices.GetByID(ctx, p.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("obtener factura: %w", err)
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	if invoice.Status != entity.InvoiceStatusApproved {
		return nil, fmt.Errorf("%w: la factura %s está en estado %s", domain.ErrConflict, invoice.ID, invoice.Status)
	}

	var companyUserID string
	if invoice.IsConfirmingAdvance() {
		owner, err := uc.parties.CompanyOwner(ctx, invoice)
		if err != nil {
			return nil, err
		}
		companyUserID = owner.ID
	}

	now := uc.now()
	investment := newInvestment(p, invoice, now)
	var derived []*entity.Payment
	err = uc.txRunner.RunFunding(ctx, func(investmentRepo repository.InvestmentRepository, invoiceRepo repository.InvoiceRepository, paymentRepo repository.PaymentRepository) error {
		if err := investmentRepo.Create(ctx, investment); err != nil {
			return fmt.Errorf("crear inversión: %w", err)
		}
		ok, err := invoiceRepo.UpdateStatus(ctx, invoice.ID, entity.InvoiceStatusApproved, entity.InvoiceStatusFunded, now)
		if err != nil {
			return fmt.Errorf("marcar factura financiada: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: la factura %s ya no está aprobada", domain.ErrConflict, invoice.ID)
		}
		if !invoice.IsConfirmingAdvance() {
			return nil
		}
		derived, err = payments.DeriveInTx(ctx, paymentRepo, investment, invoice, companyUserID, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	invoice.MarkFunded(now)
	uc.log.Info().Str("investment_id", investment.ID).Str("proposal_id", p.ID).Str("invoice_id", invoice.ID).Int("payments", len(derived)).Msg("propuesta financiada")

	resp := toInvestmentResponse(investment)
	for _, pay := range derived {
		resp.Payments = append(resp.Payments, payments.ToPaymentResponse(pay))
	}
	return resp, nil
}

// Complete active → completed y la factura pasa a paid. Solo administradores.
func (uc *UseCase) Complete(ctx context.Context, actor dto.Actor, id string, in dto.CompleteInvestmentRequest) (*dto.InvestmentResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if in.ActualReturn.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	inv, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	from := inv.Status
	if !inv.Complete(financing.Round(in.ActualReturn), now) {
		return nil, domain.NewTransitionError(ActionComplete, string(from))
	}
	err = uc.txRunner.RunFunding(ctx, func(investmentRepo repository.InvestmentRepository, invoiceRepo repository.InvoiceRepository, _ repository.PaymentRepository) error {
		ok, err := investmentRepo.UpdateStatus(ctx, inv, from)
		if err != nil {
			return fmt.Errorf("actualizar inversión: %w", err)
		}
		if !ok {
			return domain.NewTransitionError(ActionComplete, string(from))
		}
		ok, err = invoiceRepo.UpdateStatus(ctx, inv.InvoiceID, entity.InvoiceStatusFunded, entity.InvoiceStatusPaid, now)
		if err != nil {
			return fmt.Errorf("marcar factura pagada: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: la factura %s no está financiada", domain.ErrConflict, inv.InvoiceID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("investment_id", inv.ID).Str("actual_return", inv.ActualReturn.String()).Msg("inversión completada")
	return toInvestmentResponse(inv), nil
}

// Default active → defaulted. Solo administradores.
func (uc *UseCase) Default(ctx context.Context, actor dto.Actor, id string) (*dto.InvestmentResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	inv, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	from := inv.Status
	if !inv.Default(uc.now()) {
		return nil, domain.NewTransitionError(ActionDefault, string(from))
	}
	ok, err := uc.investments.UpdateStatus(ctx, inv, from)
	if err != nil {
		return nil, fmt.Errorf("actualizar inversión: %w", err)
	}
	if !ok {
		return nil, domain.NewTransitionError(ActionDefault, string(from))
	}
	uc.log.Warn().Str("investment_id", inv.ID).Str("invoice_id", inv.InvoiceID).Msg("inversión en mora")
	return toInvestmentResponse(inv), nil
}

// Get devuelve una inversión al administrador, a su inversionista o a la empresa de la factura.
func (uc *UseCase) Get(ctx context.Context, actor dto.Actor, id string) (*dto.InvestmentResponse, error) {
	inv, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() || inv.UserID == actor.UserID {
		return toInvestmentResponse(inv), nil
	}
	invoice, err := uc.invoices.GetByID(ctx, inv.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("obtener factura: %w", err)
	}
	if invoice == nil || !actor.OwnsCompany(invoice.CompanyID) {
		return nil, domain.ErrForbidden
	}
	return toInvestmentResponse(inv), nil
}

// ListMine inversiones del inversionista autenticado.
func (uc *UseCase) ListMine(ctx context.Context, actor dto.Actor, page dto.PageRequest) ([]dto.InvestmentResponse, error) {
	if actor.Role != entity.RoleInvestor {
		return nil, domain.ErrForbidden
	}
	page.DefaultPage()
	list, err := uc.investments.ListByUser(ctx, actor.UserID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("listar inversiones: %w", err)
	}
	out := make([]dto.InvestmentResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, *toInvestmentResponse(inv))
	}
	return out, nil
}

func (uc *UseCase) load(ctx context.Context, id string) (*entity.Investment, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	inv, err := uc.investments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener inversión: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

// newInvestment capital comprometido: en factoring el anticipo, en confirming el monto
// con el descuento por pronto pago de la factura.
func newInvestment(p *entity.InvestmentProposal, invoice *entity.Invoice, now time.Time) *entity.Investment {
	var amount decimal.Decimal
	switch invoice.OperationType {
	case entity.OperationFactoring:
		advance := decimal.NewFromInt(100)
		if p.Factoring != nil && p.Factoring.AdvancePercentage != nil {
			advance = *p.Factoring.AdvancePercentage
		}
		amount = financing.AdvancedAmount(invoice.Amount, advance)
	default:
		var discount *decimal.Decimal
		if invoice.Confirming != nil {
			discount = invoice.Confirming.EarlyPaymentDiscount
		}
		amount = financing.DiscountedAmount(invoice.Amount, financing.OrZero(discount))
	}
	expected := p.ExpectedReturn(invoice.Amount)
	proposalID := p.ID
	return &entity.Investment{
		ID:             uuid.New().String(),
		UserID:         p.InvestorID,
		InvoiceID:      invoice.ID,
		ProposalID:     &proposalID,
		Amount:         amount,
		ExpectedReturn: expected,
		ReturnRate:     financing.ReturnRate(expected, amount),
		InvestmentDate: now,
		MaturityDate:   invoice.DueDate,
		Status:         entity.InvestmentStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func toInvestmentResponse(inv *entity.Investment) *dto.InvestmentResponse {
	return &dto.InvestmentResponse{
		ID:             inv.ID,
		UserID:         inv.UserID,
		InvoiceID:      inv.InvoiceID,
		ProposalID:     inv.ProposalID,
		Amount:         inv.Amount,
		ExpectedReturn: inv.ExpectedReturn,
		ActualReturn:   inv.ActualReturn,
		ReturnRate:     inv.ReturnRate,
		InvestmentDate: inv.InvestmentDate,
		MaturityDate:   inv.MaturityDate,
		Status:         string(inv.Status),
	}
}
