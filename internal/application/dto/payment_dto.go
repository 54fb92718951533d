package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentResponse pago programado en respuestas. NetAmount es el monto recalculado para mostrar.
type PaymentResponse struct {
	ID                   string           `json:"id"`
	InvestmentID         string           `json:"investment_id"`
	InvoiceID            string           `json:"invoice_id"`
	PayerID              string           `json:"payer_id"`
	PayeeID              *string          `json:"payee_id"`
	Type                 string           `json:"payment_type"`
	Amount               decimal.Decimal  `json:"amount"`
	NetAmount            decimal.Decimal  `json:"net_amount"`
	OriginalAmount       decimal.Decimal  `json:"original_amount"`
	DiscountPercentage   *decimal.Decimal `json:"discount_percentage,omitempty"`
	CommissionPercentage *decimal.Decimal `json:"commission_percentage,omitempty"`
	ScheduledDate        time.Time        `json:"scheduled_date"`
	ExecutedDate         *time.Time       `json:"executed_date"`
	Status               string           `json:"status"`
	FailureReason        string           `json:"failure_reason,omitempty"`
	TransferReference    string           `json:"transfer_reference,omitempty"`
	Metadata             PaymentMetadata  `json:"metadata"`
}

// PaymentMetadata esquema fijo de metadata expuesto por la API.
type PaymentMetadata struct {
	OperationType         string           `json:"operation_type"`
	AdvanceRequest        bool             `json:"advance_request"`
	OriginalInvoiceAmount decimal.Decimal  `json:"original_invoice_amount"`
	DiscountApplied       *decimal.Decimal `json:"discount_applied,omitempty"`
	CommissionApplied     *decimal.Decimal `json:"commission_applied,omitempty"`
	SupplierName          string           `json:"supplier_name,omitempty"`
	SupplierTaxID         string           `json:"supplier_tax_id,omitempty"`
}

// Resultados posibles de un pago dentro del barrido.
const (
	SweepOutcomeSuccess = "success"
	SweepOutcomeFailed  = "failed"
	SweepOutcomeSkipped = "skipped" // otro proceso cerró el pago antes de actualizarlo
)

// SweepOutcome resultado por pago del barrido.
type SweepOutcome struct {
	PaymentID string `json:"payment_id"`
	Outcome   string `json:"outcome"`
	Detail    string `json:"detail,omitempty"`
}

// SweepResponse resultado de POST /api/admin/payments/sweep.
type SweepResponse struct {
	RunAt     time.Time      `json:"run_at"`
	Processed int            `json:"processed"`
	Executed  int            `json:"executed"`
	Failed    int            `json:"failed"`
	Outcomes  []SweepOutcome `json:"outcomes"`
}
