package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProposalRequest body para POST /api/proposals.
// Se envían solo los campos del tipo de operación de la factura.
type CreateProposalRequest struct {
	InvoiceID            string           `json:"invoice_id" validate:"required,uuid"`
	AdvancePercentage    *decimal.Decimal `json:"advance_percentage,omitempty"`
	FactoringCommission  *decimal.Decimal `json:"factoring_commission,omitempty"`
	PaymentTerms         *string          `json:"payment_terms,omitempty" validate:"omitempty,max=255"`
	ConfirmingCommission *decimal.Decimal `json:"confirming_commission,omitempty"`
	EarlyPaymentDiscount *decimal.Decimal `json:"early_payment_discount,omitempty"`
	Message              string           `json:"message,omitempty" validate:"max=2000"`
	ExpiresInDays        *int             `json:"expires_in_days,omitempty" validate:"omitempty,min=1,max=90"`
}

// ApproveProposalRequest body para POST /api/proposals/:id/approve.
type ApproveProposalRequest struct {
	Notes string `json:"notes,omitempty" validate:"max=2000"`
}

// RejectProposalRequest body para POST /api/proposals/:id/reject.
type RejectProposalRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=2000"`
}

// CounterOfferRequest body para POST /api/proposals/:id/counter-offer.
// Los campos ausentes quedan sin definir en la nueva propuesta.
type CounterOfferRequest struct {
	AdvancePercentage    *decimal.Decimal `json:"advance_percentage,omitempty"`
	FactoringCommission  *decimal.Decimal `json:"factoring_commission,omitempty"`
	PaymentTerms         *string          `json:"payment_terms,omitempty" validate:"omitempty,max=255"`
	ConfirmingCommission *decimal.Decimal `json:"confirming_commission,omitempty"`
	EarlyPaymentDiscount *decimal.Decimal `json:"early_payment_discount,omitempty"`
	Response             string           `json:"response,omitempty" validate:"max=2000"`
}

// ProposalListRequest filtros de GET /api/proposals.
type ProposalListRequest struct {
	PageRequest
	Status []string `query:"status"`
}

// ProposalResponse propuesta en respuestas.
type ProposalResponse struct {
	ID                   string           `json:"id"`
	InvestorID           string           `json:"investor_id"`
	InvoiceID            string           `json:"invoice_id"`
	ParentProposalID     *string          `json:"parent_proposal_id,omitempty"`
	OperationType        string           `json:"operation_type"`
	Status               string           `json:"status"`
	StatusLabel          string           `json:"status_label"`
	AdvancePercentage    *decimal.Decimal `json:"advance_percentage,omitempty"`
	FactoringCommission  *decimal.Decimal `json:"factoring_commission,omitempty"`
	PaymentTerms         *string          `json:"payment_terms,omitempty"`
	ConfirmingCommission *decimal.Decimal `json:"confirming_commission,omitempty"`
	EarlyPaymentDiscount *decimal.Decimal `json:"early_payment_discount,omitempty"`
	ExpectedReturn       *decimal.Decimal `json:"expected_return,omitempty"`
	Message              string           `json:"message,omitempty"`
	ResponseMessage      string           `json:"response_message,omitempty"`
	ApprovalNotes        string           `json:"approval_notes,omitempty"`
	RejectionReason      string           `json:"rejection_reason,omitempty"`
	RespondedBy          string           `json:"responded_by,omitempty"`
	SentAt               *time.Time       `json:"sent_at,omitempty"`
	ApprovedAt           *time.Time       `json:"approved_at,omitempty"`
	RejectedAt           *time.Time       `json:"rejected_at,omitempty"`
	RespondedAt          *time.Time       `json:"responded_at,omitempty"`
	ExpiresAt            *time.Time       `json:"expires_at,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// ProposalListResponse listado paginado.
type ProposalListResponse struct {
	Items []ProposalResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// CounterOfferResponse propuesta origen (counter_offered) y la nueva propuesta pending.
type CounterOfferResponse struct {
	Parent  ProposalResponse `json:"parent"`
	Counter ProposalResponse `json:"counter"`
}

// ExpireDueResponse resultado de POST /api/admin/proposals/expire.
type ExpireDueResponse struct {
	Expired []string `json:"expired"`
}
