// Package proposal implementa el flujo de negociación de propuestas de inversión:
// creación, envío, respuesta de la contraparte (aprobar, rechazar, contraofertar) y vencimiento.
package proposal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/factoring-api/internal/application/dto"
	"github.com/jhoicas/factoring-api/internal/application/parties"
	"github.com/jhoicas/factoring-api/internal/application/ports"
	"github.com/jhoicas/factoring-api/internal/domain"
	"github.com/jhoicas/factoring-api/internal/domain/entity"
	"github.com/jhoicas/factoring-api/internal/domain/repository"
	"github.com/jhoicas/factoring-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// Config parámetros del flujo de propuestas.
type Config struct {
	DefaultExpiryDays int
}

// UseCase casos de uso de propuestas de inversión.
type UseCase struct {
	txRunner  TxRunner
	proposals repository.ProposalRepository
	invoices  repository.InvoiceRepository
	parties   *parties.Resolver
	notifier  ports.Notifier
	log       *logger.Logger
	cfg       Config
	now       func() time.Time
}

// NewUseCase construye el caso de uso. notifier puede ser nil (sin notificaciones).
func NewUseCase(
	txRunner TxRunner,
	proposals repository.ProposalRepository,
	invoices repository.InvoiceRepository,
	resolver *parties.Resolver,
	notifier ports.Notifier,
	log *logger.Logger,
	cfg Config,
) *UseCase {
	if cfg.DefaultExpiryDays <= 0 {
		cfg.DefaultExpiryDays = 7
	}
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		txRunner:  txRunner,
		proposals: proposals,
		invoices:  invoices,
		parties:   resolver,
		notifier:  notifier,
		log:       log.WithComponent("proposal"),
		cfg:       cfg,
		now:       time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Create registra una propuesta en borrador sobre una factura. Solo inversionistas.
func (uc *UseCase) Create(ctx context.Context, actor dto.Actor, in dto.CreateProposalRequest) (*dto.ProposalResponse, error) {
	if actor.Role != entity.RoleInvestor || actor.UserID == "" {
		return nil, domain.ErrForbidden
	}
	if in.InvoiceID == "" {
		return nil, domain.ErrInvalidInput
	}
	invoice, err := uc.loadInvoice(ctx, in.InvoiceID)
	if err != nil {
		return nil, err
	}
	if !invoice.AcceptsProposals() {
		return nil, fmt.Errorf("%w: la factura está en estado %s", domain.ErrConflict, invoice.Status)
	}

	now := uc.now()
	p := &entity.InvestmentProposal{
		ID:            uuid.New().String(),
		InvestorID:    actor.UserID,
		InvoiceID:     invoice.ID,
		OperationType: invoice.OperationType,
		Status:        entity.ProposalStatusDraft,
		Message:       in.Message,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	terms := entity.CounterTerms{
		AdvancePercentage:    in.AdvancePercentage,
		FactoringCommission:  in.FactoringCommission,
		PaymentTerms:         in.PaymentTerms,
		ConfirmingCommission: in.ConfirmingCommission,
		EarlyPaymentDiscount: in.EarlyPaymentDiscount,
	}
	if err := validateTerms(invoice.OperationType, terms); err != nil {
		return nil, err
	}
	switch invoice.OperationType {
	case entity.OperationFactoring:
		if in.AdvancePercentage == nil || in.FactoringCommission == nil {
			return nil, fmt.Errorf("%w: factoring requiere advance_percentage y factoring_commission", domain.ErrInvalidInput)
		}
		p.Factoring = &entity.FactoringTerms{
			AdvancePercentage:   in.AdvancePercentage,
			FactoringCommission: in.FactoringCommission,
		}
	case entity.OperationConfirming:
		if in.ConfirmingCommission == nil {
			return nil, fmt.Errorf("%w: confirming requiere confirming_commission", domain.ErrInvalidInput)
		}
		p.Confirming = &entity.ConfirmingOffer{
			PaymentTerms:         in.PaymentTerms,
			ConfirmingCommission: in.ConfirmingCommission,
			EarlyPaymentDiscount: in.EarlyPaymentDiscount,
		}
	}
	days := uc.cfg.DefaultExpiryDays
	if in.ExpiresInDays != nil {
		if *in.ExpiresInDays <= 0 {
			return nil, domain.ErrInvalidInput
		}
		days = *in.ExpiresInDays
	}
	expires := now.AddDate(0, 0, days)
	p.ExpiresAt = &expires

	if err := p.Validate(invoice.OperationType); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err := uc.proposals.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("crear propuesta: %w", err)
	}
	uc.log.Info().Str("proposal_id", p.ID).Str("invoice_id", invoice.ID).Str("investor_id", actor.UserID).Msg("propuesta creada")

	uc.notifyCompany(ctx, ports.NotificationProposalCreated, invoice, p, in.Message)
	return toProposalResponse(p, invoice), nil
}

// Get devuelve una propuesta visible para el actor.
func (uc *UseCase) Get(ctx context.Context, actor dto.Actor, id string) (*dto.ProposalResponse, error) {
	p, invoice, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, p, invoice) {
		return nil, domain.ErrForbidden
	}
	return toProposalResponse(p, invoice), nil
}

// History devuelve la cadena de contraofertas completa, desde la propuesta raíz.
func (uc *UseCase) History(ctx context.Context, actor dto.Actor, id string) ([]dto.ProposalResponse, error) {
	p, invoice, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, p, invoice) {
		return nil, domain.ErrForbidden
	}
	chain, err := uc.proposals.Chain(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("historial de propuesta: %w", err)
	}
	items := make([]dto.ProposalResponse, 0, len(chain))
	for _, c := range chain {
		items = append(items, *toProposalResponse(c, invoice))
	}
	return items, nil
}

// List lista propuestas según el rol: el inversionista ve las suyas, la empresa las de sus
// facturas y el administrador todas (filtrables por estado).
func (uc *UseCase) List(ctx context.Context, actor dto.Actor, in dto.ProposalListRequest) (*dto.ProposalListResponse, error) {
	statuses, err := parseStatuses(in.Status)
	if err != nil {
		return nil, err
	}
	in.DefaultPage()
	f := repository.ProposalFilter{Statuses: statuses, Limit: in.Limit, Offset: in.Offset}
	switch {
	case actor.IsAdmin():
	case actor.Role == entity.RoleInvestor:
		f.InvestorID = actor.UserID
	case actor.Role == entity.RoleCompany && actor.CompanyID != "":
		f.CompanyID = actor.CompanyID
	default:
		return nil, domain.ErrForbidden
	}
	return uc.list(ctx, f)
}

// ListByInvoice lista las propuestas recibidas por una factura (empresa dueña o admin).
func (uc *UseCase) ListByInvoice(ctx context.Context, actor dto.Actor, invoiceID string, in dto.ProposalListRequest) (*dto.ProposalListResponse, error) {
	invoice, err := uc.loadInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.OwnsCompany(invoice.CompanyID) {
		return nil, domain.ErrForbidden
	}
	statuses, err := parseStatuses(in.Status)
	if err != nil {
		return nil, err
	}
	in.DefaultPage()
	return uc.list(ctx, repository.ProposalFilter{InvoiceID: invoiceID, Statuses: statuses, Limit: in.Limit, Offset: in.Offset})
}

func (uc *UseCase) list(ctx context.Context, f repository.ProposalFilter) (*dto.ProposalListResponse, error) {
	list, err := uc.proposals.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("listar propuestas: %w", err)
	}
	invoices := make(map[string]*entity.Invoice)
	items := make([]dto.ProposalResponse, 0, len(list))
	for _, p := range list {
		inv, ok := invoices[p.InvoiceID]
		if !ok {
			inv, err = uc.invoices.GetByID(ctx, p.InvoiceID)
			if err != nil {
				return nil, fmt.Errorf("obtener factura %s: %w", p.InvoiceID, err)
			}
			invoices[p.InvoiceID] = inv
		}
		items = append(items, *toProposalResponse(p, inv))
	}
	return &dto.ProposalListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset},
	}, nil
}

func (uc *UseCase) load(ctx context.Context, id string) (*entity.InvestmentProposal, *entity.Invoice, error) {
	if id == "" {
		return nil, nil, domain.ErrInvalidInput
	}
	p, err := uc.proposals.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("obtener propuesta: %w", err)
	}
	if p == nil {
		return nil, nil, domain.ErrNotFound
	}
	invoice, err := uc.loadInvoice(ctx, p.InvoiceID)
	if err != nil {
		return nil, nil, err
	}
	return p, invoice, nil
}

func (uc *UseCase) loadInvoice(ctx context.Context, id string) (*entity.Invoice, error) {
	invoice, err := uc.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener factura: %w", err)
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}

func parseStatuses(raw []string) ([]entity.ProposalStatus, error) {
	out := make([]entity.ProposalStatus, 0, len(raw))
	for _, s := range raw {
		st, err := entity.ParseProposalStatus(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		out = append(out, st)
	}
	return out, nil
}

var hundred = decimal.NewFromInt(100)

// validateTerms rechaza campos del otro tipo de operación y porcentajes fuera de [0, 100].
func validateTerms(op entity.OperationType, t entity.CounterTerms) error {
	switch op {
	case entity.OperationFactoring:
		if t.HasConfirmingFields() {
			return fmt.Errorf("%w: campos de confirming en una factura de factoring", domain.ErrInvalidInput)
		}
	case entity.OperationConfirming:
		if t.HasFactoringFields() {
			return fmt.Errorf("%w: campos de factoring en una factura de confirming", domain.ErrInvalidInput)
		}
	}
	for _, pct := range []*decimal.Decimal{t.AdvancePercentage, t.FactoringCommission, t.ConfirmingCommission, t.EarlyPaymentDiscount} {
		if pct != nil && (pct.IsNegative() || pct.GreaterThan(hundred)) {
			return fmt.Errorf("%w: porcentaje fuera de rango: %s", domain.ErrInvalidInput, pct.String())
		}
	}
	return nil
}

// authoredByInvestor informa si las condiciones vigentes las redactó el inversionista:
// la propuesta original, o una contraoferta que hizo él mismo.
func authoredByInvestor(p *entity.InvestmentProposal) bool {
	return p.ParentProposalID == nil || p.RespondedBy == p.InvestorID
}

// authorizeResponder solo la contraparte de quien redactó la propuesta puede responderla.
func authorizeResponder(actor dto.Actor, p *entity.InvestmentProposal, invoice *entity.Invoice) error {
	if actor.IsAdmin() {
		return nil
	}
	if authoredByInvestor(p) {
		if actor.OwnsCompany(invoice.CompanyID) {
			return nil
		}
	} else if actor.Role == entity.RoleInvestor && actor.UserID == p.InvestorID {
		return nil
	}
	return domain.ErrForbidden
}

func canView(actor dto.Actor, p *entity.InvestmentProposal, invoice *entity.Invoice) bool {
	return actor.IsAdmin() ||
		(actor.Role == entity.RoleInvestor && actor.UserID == p.InvestorID) ||
		actor.OwnsCompany(invoice.CompanyID)
}
