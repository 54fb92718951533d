package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentStatus estado de una inversión.
type InvestmentStatus string

const (
	InvestmentStatusActive    InvestmentStatus = "active"
	InvestmentStatusCompleted InvestmentStatus = "completed"
	InvestmentStatusDefaulted InvestmentStatus = "defaulted"
	InvestmentStatusCancelled InvestmentStatus = "cancelled"
)

// ParseInvestmentStatus valida el texto persistido.
func ParseInvestmentStatus(s string) (InvestmentStatus, error) {
	switch st := InvestmentStatus(s); st {
	case InvestmentStatusActive, InvestmentStatusCompleted, InvestmentStatusDefaulted, InvestmentStatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("estado de inversión desconocido: %q", s)
}

// Investment capital comprometido por un inversionista sobre una factura.
type Investment struct {
	ID             string
	UserID         string // inversionista
	InvoiceID      string
	ProposalID     *string // propuesta aprobada que originó la inversión
	Amount         decimal.Decimal
	ExpectedReturn decimal.Decimal
	ActualReturn   *decimal.Decimal
	ReturnRate     decimal.Decimal // % sobre Amount
	InvestmentDate time.Time
	MaturityDate   time.Time
	Status         InvestmentStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Complete active → completed registrando el rendimiento realizado.
func (i *Investment) Complete(actualReturn decimal.Decimal, now time.Time) bool {
	if i.Status != InvestmentStatusActive {
		return false
	}
	i.Status = InvestmentStatusCompleted
	i.ActualReturn = &actualReturn
	i.UpdatedAt = now
	return true
}

// Default active → defaulted (la factura no se pagó).
func (i *Investment) Default(now time.Time) bool {
	if i.Status != InvestmentStatusActive {
		return false
	}
	i.Status = InvestmentStatusDefaulted
	i.UpdatedAt = now
	return true
}

// Cancel active → cancelled.
func (i *Investment) Cancel(now time.Time) bool {
	if i.Status != InvestmentStatusActive {
		return false
	}
	i.Status = InvestmentStatusCancelled
	i.UpdatedAt = now
	return true
}
