package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/factoring-api/internal/domain/financing"
	"github.com/shopspring/decimal"
)

// ProposalStatus estado de una propuesta de inversión.
type ProposalStatus string

const (
	ProposalStatusDraft          ProposalStatus = "draft"
	ProposalStatusSent           ProposalStatus = "sent"
	ProposalStatusPending        ProposalStatus = "pending"
	ProposalStatusApproved       ProposalStatus = "approved"
	ProposalStatusRejected       ProposalStatus = "rejected"
	ProposalStatusCounterOffered ProposalStatus = "counter_offered"
	ProposalStatusExpired        ProposalStatus = "expired"
)

// Acciones del flujo de propuestas (se reportan en domain.TransitionError).
const (
	ProposalActionSend         = "send"
	ProposalActionApprove      = "approve"
	ProposalActionReject       = "reject"
	ProposalActionExpire       = "expire"
	ProposalActionCounterOffer = "counter_offer"
)

// ParseProposalStatus valida el texto persistido o recibido como filtro.
func ParseProposalStatus(s string) (ProposalStatus, error) {
	st := ProposalStatus(s)
	if !st.IsValid() {
		return "", fmt.Errorf("estado de propuesta desconocido: %q", s)
	}
	return st, nil
}

// IsValid informa si el valor pertenece al enumerado.
func (s ProposalStatus) IsValid() bool {
	switch s {
	case ProposalStatusDraft, ProposalStatusSent, ProposalStatusPending, ProposalStatusApproved,
		ProposalStatusRejected, ProposalStatusCounterOffered, ProposalStatusExpired:
		return true
	}
	return false
}

// IsTerminal approved, rejected y expired no admiten más transiciones.
func (s ProposalStatus) IsTerminal() bool {
	return s == ProposalStatusApproved || s == ProposalStatusRejected || s == ProposalStatusExpired
}

// StatusDisplayName etiqueta visible para cada estado.
func StatusDisplayName(s ProposalStatus) string {
	switch s {
	case ProposalStatusDraft:
		return "Borrador"
	case ProposalStatusSent:
		return "Enviada"
	case ProposalStatusPending:
		return "Pendiente"
	case ProposalStatusApproved:
		return "Aprobada"
	case ProposalStatusRejected:
		return "Rechazada"
	case ProposalStatusCounterOffered:
		return "Contraoferta"
	case ProposalStatusExpired:
		return "Expirada"
	default:
		return "Desconocido"
	}
}

// EditableStatuses estados desde los que la contraparte puede responder.
var EditableStatuses = []ProposalStatus{ProposalStatusSent, ProposalStatusPending}

// FactoringTerms condiciones comerciales de una propuesta de factoring.
type FactoringTerms struct {
	AdvancePercentage   *decimal.Decimal
	FactoringCommission *decimal.Decimal
}

// ConfirmingOffer condiciones comerciales de una propuesta de confirming.
type ConfirmingOffer struct {
	PaymentTerms         *string
	ConfirmingCommission *decimal.Decimal
	EarlyPaymentDiscount *decimal.Decimal
}

// CounterTerms campos que la contraparte modifica en una contraoferta.
// Un campo nil no se copia: queda sin definir en la nueva propuesta.
type CounterTerms struct {
	AdvancePercentage    *decimal.Decimal
	FactoringCommission  *decimal.Decimal
	PaymentTerms         *string
	ConfirmingCommission *decimal.Decimal
	EarlyPaymentDiscount *decimal.Decimal
}

// HasFactoringFields informa si trae algún campo de factoring.
func (t CounterTerms) HasFactoringFields() bool {
	return t.AdvancePercentage != nil || t.FactoringCommission != nil
}

// HasConfirmingFields informa si trae algún campo de confirming.
func (t CounterTerms) HasConfirmingFields() bool {
	return t.PaymentTerms != nil || t.ConfirmingCommission != nil || t.EarlyPaymentDiscount != nil
}

// InvestmentProposal oferta de un inversionista sobre una factura.
// El estado solo cambia a través de los métodos de transición.
type InvestmentProposal struct {
	ID               string
	InvestorID       string
	InvoiceID        string
	ParentProposalID *string // contraoferta: id de la propuesta origen
	OperationType    OperationType
	Status           ProposalStatus
	Factoring        *FactoringTerms
	Confirming       *ConfirmingOffer
	Message          string // nota del inversionista
	ResponseMessage  string // respuesta de la contraparte en una contraoferta
	ApprovalNotes    string
	RejectionReason  string
	RespondedBy      string
	SentAt           *time.Time
	ApprovedAt       *time.Time
	RejectedAt       *time.Time
	RespondedAt      *time.Time
	ExpiresAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Validate exige exactamente un grupo de condiciones, el del tipo de operación de la factura.
func (p *InvestmentProposal) Validate(invoiceType OperationType) error {
	if p.OperationType != invoiceType {
		return fmt.Errorf("propuesta %s: operación %s distinta de la factura (%s)", p.ID, p.OperationType, invoiceType)
	}
	switch p.OperationType {
	case OperationFactoring:
		if p.Factoring == nil || p.Confirming != nil {
			return fmt.Errorf("propuesta %s: requiere solo condiciones de factoring", p.ID)
		}
	case OperationConfirming:
		if p.Confirming == nil || p.Factoring != nil {
			return fmt.Errorf("propuesta %s: requiere solo condiciones de confirming", p.ID)
		}
	default:
		return fmt.Errorf("propuesta %s: tipo de operación inválido", p.ID)
	}
	return nil
}

// CanBeEdited la propuesta espera respuesta (sent o pending).
func (p *InvestmentProposal) CanBeEdited() bool {
	return p.Status == ProposalStatusSent || p.Status == ProposalStatusPending
}

// Send draft → sent.
func (p *InvestmentProposal) Send(now time.Time) bool {
	if p.Status != ProposalStatusDraft {
		return false
	}
	p.Status = ProposalStatusSent
	p.SentAt = &now
	p.UpdatedAt = now
	return true
}

// Approve sent|pending → approved.
func (p *InvestmentProposal) Approve(approverID, notes string, now time.Time) bool {
	if !p.CanBeEdited() {
		return false
	}
	p.Status = ProposalStatusApproved
	p.ApprovalNotes = notes
	p.RespondedBy = approverID
	p.ApprovedAt = &now
	p.RespondedAt = &now
	p.UpdatedAt = now
	return true
}

// Reject sent|pending → rejected.
func (p *InvestmentProposal) Reject(rejecterID, reason string, now time.Time) bool {
	if !p.CanBeEdited() {
		return false
	}
	p.Status = ProposalStatusRejected
	p.RejectionReason = reason
	p.RespondedBy = rejecterID
	p.RejectedAt = &now
	p.RespondedAt = &now
	p.UpdatedAt = now
	return true
}

// MarkExpired sent|pending → expired.
func (p *InvestmentProposal) MarkExpired(now time.Time) bool {
	if !p.CanBeEdited() {
		return false
	}
	p.Status = ProposalStatusExpired
	p.UpdatedAt = now
	return true
}

// IsExpiredAt informa si venció el plazo de respuesta.
func (p *InvestmentProposal) IsExpiredAt(now time.Time) bool {
	return p.ExpiresAt != nil && !p.ExpiresAt.After(now)
}

// CounterOffer crea una nueva propuesta pending hija de p con las condiciones presentes en terms
// y marca p como counter_offered. Devuelve false sin modificar p si no puede editarse.
func (p *InvestmentProposal) CounterOffer(newID string, terms CounterTerms, response, responderID string, now time.Time) (*InvestmentProposal, bool) {
	if !p.CanBeEdited() {
		return nil, false
	}
	parentID := p.ID
	child := &InvestmentProposal{
		ID:               newID,
		InvestorID:       p.InvestorID,
		InvoiceID:        p.InvoiceID,
		ParentProposalID: &parentID,
		OperationType:    p.OperationType,
		Status:           ProposalStatusPending,
		ResponseMessage:  response,
		RespondedBy:      responderID,
		RespondedAt:      &now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	switch p.OperationType {
	case OperationFactoring:
		child.Factoring = &FactoringTerms{
			AdvancePercentage:   cloneDecimal(terms.AdvancePercentage),
			FactoringCommission: cloneDecimal(terms.FactoringCommission),
		}
	case OperationConfirming:
		child.Confirming = &ConfirmingOffer{
			PaymentTerms:         cloneString(terms.PaymentTerms),
			ConfirmingCommission: cloneDecimal(terms.ConfirmingCommission),
			EarlyPaymentDiscount: cloneDecimal(terms.EarlyPaymentDiscount),
		}
	}

	p.Status = ProposalStatusCounterOffered
	p.RespondedBy = responderID
	p.RespondedAt = &now
	p.UpdatedAt = now
	return child, true
}

// ExpectedReturn rendimiento proyectado para el inversionista.
// Se evalúa primero la rama de factoring; sin condiciones completas devuelve cero.
func (p *InvestmentProposal) ExpectedReturn(invoiceAmount decimal.Decimal) decimal.Decimal {
	if f := p.Factoring; f != nil && f.FactoringCommission != nil && f.AdvancePercentage != nil {
		return financing.FactoringReturn(invoiceAmount, *f.AdvancePercentage, *f.FactoringCommission)
	}
	if c := p.Confirming; c != nil && c.ConfirmingCommission != nil {
		return financing.ConfirmingReturn(invoiceAmount, *c.ConfirmingCommission)
	}
	return decimal.Zero
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
