package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OperationType tipo de operación financiera de una factura.
type OperationType string

const (
	OperationFactoring  OperationType = "factoring"  // anticipo contra una cuenta por cobrar
	OperationConfirming OperationType = "confirming" // pago anticipado al proveedor
)

// ParseOperationType valida el texto persistido o recibido por la API.
func ParseOperationType(s string) (OperationType, error) {
	t := OperationType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("tipo de operación desconocido: %q", s)
	}
	return t, nil
}

// IsValid informa si el valor pertenece al enumerado.
func (t OperationType) IsValid() bool {
	return t == OperationFactoring || t == OperationConfirming
}

// InvoiceStatus estado del ciclo de vida de una factura.
type InvoiceStatus string

const (
	InvoiceStatusPending  InvoiceStatus = "pending"
	InvoiceStatusApproved InvoiceStatus = "approved" // verificada externamente
	InvoiceStatusFunded   InvoiceStatus = "funded"   // tiene una inversión asociada
	InvoiceStatusPaid     InvoiceStatus = "paid"
	InvoiceStatusRejected InvoiceStatus = "rejected"
	InvoiceStatusExpired  InvoiceStatus = "expired"
)

// ParseInvoiceStatus valida el texto persistido.
func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	st := InvoiceStatus(s)
	if !st.IsValid() {
		return "", fmt.Errorf("estado de factura desconocido: %q", s)
	}
	return st, nil
}

// IsValid informa si el valor pertenece al enumerado.
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusApproved, InvoiceStatusFunded,
		InvoiceStatusPaid, InvoiceStatusRejected, InvoiceStatusExpired:
		return true
	}
	return false
}

// ConfirmingTerms campos propios de una factura de confirming.
type ConfirmingTerms struct {
	SupplierName         string
	SupplierTaxID        string
	EarlyPaymentDiscount *decimal.Decimal // % de descuento por pronto pago
	ConfirmingCommission *decimal.Decimal // % de comisión que paga la empresa
	AdvanceRequest       bool             // el proveedor pide cobrar de inmediato
}

// Invoice cuenta por cobrar (factoring) u obligación con proveedor (confirming).
type Invoice struct {
	ID            string
	CompanyID     string
	Number        string
	Amount        decimal.Decimal
	OperationType OperationType
	Status        InvoiceStatus
	DueDate       time.Time
	Confirming    *ConfirmingTerms // nil salvo en confirming
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate comprueba los invariantes de la factura.
func (i *Invoice) Validate() error {
	if !i.OperationType.IsValid() {
		return fmt.Errorf("factura %s: tipo de operación inválido", i.ID)
	}
	if i.Amount.IsNegative() {
		return fmt.Errorf("factura %s: monto negativo", i.ID)
	}
	if i.OperationType != OperationConfirming && i.Confirming != nil {
		return fmt.Errorf("factura %s: campos de confirming en una operación %s", i.ID, i.OperationType)
	}
	return nil
}

// IsConfirmingAdvance informa si la factura es confirming con solicitud de anticipo.
func (i *Invoice) IsConfirmingAdvance() bool {
	return i.OperationType == OperationConfirming && i.Confirming != nil && i.Confirming.AdvanceRequest
}

// AcceptsProposals informa si la factura admite nuevas propuestas de inversión.
func (i *Invoice) AcceptsProposals() bool {
	return i.Status == InvoiceStatusPending || i.Status == InvoiceStatusApproved
}

// MarkFunded pasa de approved a funded. Devuelve false sin modificar nada si no aplica.
func (i *Invoice) MarkFunded(now time.Time) bool {
	if i.Status != InvoiceStatusApproved {
		return false
	}
	i.Status = InvoiceStatusFunded
	i.UpdatedAt = now
	return true
}

// MarkPaid pasa de funded a paid. Devuelve false sin modificar nada si no aplica.
func (i *Invoice) MarkPaid(now time.Time) bool {
	if i.Status != InvoiceStatusFunded {
		return false
	}
	i.Status = InvoiceStatusPaid
	i.UpdatedAt = now
	return true
}
