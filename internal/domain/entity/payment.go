package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/factoring-api/internal/domain/financing"
	"github.com/shopspring/decimal"
)

// PaymentType tipo de movimiento derivado de una inversión de confirming.
type PaymentType string

const (
	PaymentTypeToSupplier      PaymentType = "payment_to_supplier" // desembolso inmediato al proveedor
	PaymentTypeChargeToCompany PaymentType = "charge_to_company"   // reembolso de la empresa al vencimiento
)

// ParsePaymentType valida el texto persistido.
func ParsePaymentType(s string) (PaymentType, error) {
	switch t := PaymentType(s); t {
	case PaymentTypeToSupplier, PaymentTypeChargeToCompany:
		return t, nil
	}
	return "", fmt.Errorf("tipo de pago desconocido: %q", s)
}

// PaymentStatus estado de un pago programado.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusExecuted  PaymentStatus = "executed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// ParsePaymentStatus valida el texto persistido.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch st := PaymentStatus(s); st {
	case PaymentStatusPending, PaymentStatusExecuted, PaymentStatusFailed, PaymentStatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("estado de pago desconocido: %q", s)
}

// SupplierPlaceholder nombre que se registra cuando la factura no trae proveedor.
const SupplierPlaceholder = "Proveedor no especificado"

// PaymentMetadata esquema fijo del campo metadata (JSONB).
// DiscountApplied solo aplica a payment_to_supplier y CommissionApplied a charge_to_company.
type PaymentMetadata struct {
	OperationType         OperationType    `json:"operation_type"`
	AdvanceRequest        bool             `json:"advance_request"`
	OriginalInvoiceAmount decimal.Decimal  `json:"original_invoice_amount"`
	DiscountApplied       *decimal.Decimal `json:"discount_applied,omitempty"`
	CommissionApplied     *decimal.Decimal `json:"commission_applied,omitempty"`
	SupplierName          string           `json:"supplier_name,omitempty"`
	SupplierTaxID         string           `json:"supplier_tax_id,omitempty"`
}

// Payment movimiento de dinero programado a partir de una inversión.
type Payment struct {
	ID                   string
	InvestmentID         string
	InvoiceID            string
	PayerID              string
	PayeeID              *string // nil: el proveedor no es usuario del sistema
	Type                 PaymentType
	Amount               decimal.Decimal
	OriginalAmount       decimal.Decimal
	DiscountPercentage   *decimal.Decimal // solo payment_to_supplier
	CommissionPercentage *decimal.Decimal // solo charge_to_company
	ScheduledDate        time.Time
	ExecutedDate         *time.Time
	Status               PaymentStatus
	FailureReason        string
	TransferReference    string
	ClaimedAt            *time.Time // reserva del barrido que está transfiriendo el pago
	Metadata             PaymentMetadata
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Validate descuento y comisión son excluyentes según el tipo.
func (p *Payment) Validate() error {
	switch p.Type {
	case PaymentTypeToSupplier:
		if p.CommissionPercentage != nil {
			return fmt.Errorf("pago %s: un pago a proveedor no lleva comisión", p.ID)
		}
	case PaymentTypeChargeToCompany:
		if p.DiscountPercentage != nil {
			return fmt.Errorf("pago %s: un cobro a empresa no lleva descuento", p.ID)
		}
	default:
		return fmt.Errorf("pago %s: tipo inválido", p.ID)
	}
	if p.Amount.IsNegative() {
		return fmt.Errorf("pago %s: monto negativo", p.ID)
	}
	return nil
}

// IsDue pendiente y con fecha programada alcanzada.
func (p *Payment) IsDue(now time.Time) bool {
	return p.Status == PaymentStatusPending && !p.ScheduledDate.After(now)
}

// Claim reserva el pago para una transferencia. Falla si no está pendiente o si otra
// reserva sigue vigente (tomada hace menos de lease).
func (p *Payment) Claim(now time.Time, lease time.Duration) bool {
	if p.Status != PaymentStatusPending {
		return false
	}
	if p.ClaimedAt != nil && !p.ClaimedAt.Before(now.Add(-lease)) {
		return false
	}
	p.ClaimedAt = &now
	return true
}

// MarkExecuted pending → executed.
func (p *Payment) MarkExecuted(reference string, now time.Time) bool {
	if p.Status != PaymentStatusPending {
		return false
	}
	p.Status = PaymentStatusExecuted
	p.ExecutedDate = &now
	p.TransferReference = reference
	p.UpdatedAt = now
	return true
}

// MarkFailed pending → failed. ExecutedDate queda en nil.
func (p *Payment) MarkFailed(reason string, now time.Time) bool {
	if p.Status != PaymentStatusPending {
		return false
	}
	p.Status = PaymentStatusFailed
	p.FailureReason = reason
	p.UpdatedAt = now
	return true
}

// NetAmount monto neto para mostrar: recalcula descuento o comisión sobre el monto original
// cuando el porcentaje está definido; en otro caso devuelve el monto almacenado.
func (p *Payment) NetAmount() decimal.Decimal {
	switch {
	case p.Type == PaymentTypeToSupplier && p.DiscountPercentage != nil:
		return financing.DiscountedAmount(p.OriginalAmount, *p.DiscountPercentage)
	case p.Type == PaymentTypeChargeToCompany && p.CommissionPercentage != nil:
		return financing.ChargedAmount(p.OriginalAmount, *p.CommissionPercentage)
	default:
		return p.Amount
	}
}
