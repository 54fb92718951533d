package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentResponse inversión en respuestas.
type InvestmentResponse struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user_id"`
	InvoiceID      string            `json:"invoice_id"`
	ProposalID     *string           `json:"proposal_id,omitempty"`
	Amount         decimal.Decimal   `json:"amount"`
	ExpectedReturn decimal.Decimal   `json:"expected_return"`
	ActualReturn   *decimal.Decimal  `json:"actual_return,omitempty"`
	ReturnRate     decimal.Decimal   `json:"return_rate"`
	InvestmentDate time.Time         `json:"investment_date"`
	MaturityDate   time.Time         `json:"maturity_date"`
	Status         string            `json:"status"`
	Payments       []PaymentResponse `json:"payments,omitempty"`
}

// CompleteInvestmentRequest body para POST /api/admin/investments/:id/complete.
type CompleteInvestmentRequest struct {
	ActualReturn decimal.Decimal `json:"actual_return"`
}
