package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/factoring-api/internal/domain/entity"
)

func supplierPayment() *entity.Payment {
	return &entity.Payment{
		ID:                 "pay-1",
		Type:               entity.PaymentTypeToSupplier,
		Amount:             decimal.NewFromInt(9500),
		OriginalAmount:     decimal.NewFromInt(10000),
		DiscountPercentage: pct("5"),
		ScheduledDate:      t0,
		Status:             entity.PaymentStatusPending,
	}
}

func TestPayment_NetAmount(t *testing.T) {
	p := supplierPayment()
	assert.Equal(t, "9500", p.NetAmount().String())

	charge := &entity.Payment{
		Type:                 entity.PaymentTypeChargeToCompany,
		Amount:               decimal.NewFromInt(10300),
		OriginalAmount:       decimal.NewFromInt(10000),
		CommissionPercentage: pct("3"),
	}
	assert.Equal(t, "10300", charge.NetAmount().String())

	// Sin porcentaje se muestra el monto almacenado.
	bare := &entity.Payment{Type: entity.PaymentTypeToSupplier, Amount: decimal.NewFromInt(777), OriginalAmount: decimal.NewFromInt(1000)}
	assert.Equal(t, "777", bare.NetAmount().String())
}

func TestPayment_MarkExecuted(t *testing.T) {
	p := supplierPayment()
	now := t0.Add(time.Minute)
	require.True(t, p.MarkExecuted("TRX-1", now))
	assert.Equal(t, entity.PaymentStatusExecuted, p.Status)
	require.NotNil(t, p.ExecutedDate)
	assert.Equal(t, now, *p.ExecutedDate)
	assert.Equal(t, "TRX-1", p.TransferReference)

	assert.False(t, p.MarkExecuted("TRX-2", now), "un pago ejecutado no se vuelve a ejecutar")
	assert.Equal(t, "TRX-1", p.TransferReference)
}

func TestPayment_MarkFailed_SinFechaDeEjecucion(t *testing.T) {
	p := supplierPayment()
	require.True(t, p.MarkFailed("fondos insuficientes", t0))
	assert.Equal(t, entity.PaymentStatusFailed, p.Status)
	assert.Equal(t, "fondos insuficientes", p.FailureReason)
	assert.Nil(t, p.ExecutedDate)

	assert.False(t, p.MarkExecuted("TRX-1", t0))
}

func TestPayment_Claim(t *testing.T) {
	p := supplierPayment()
	require.True(t, p.Claim(t0, time.Minute))
	require.NotNil(t, p.ClaimedAt)

	assert.False(t, p.Claim(t0.Add(30*time.Second), time.Minute), "reserva vigente")
	assert.True(t, p.Claim(t0.Add(2*time.Minute), time.Minute), "reserva vencida")

	require.True(t, p.MarkExecuted("TRX-1", t0))
	assert.False(t, p.Claim(t0.Add(time.Hour), time.Minute))
}

func TestPayment_IsDue(t *testing.T) {
	p := supplierPayment()
	assert.True(t, p.IsDue(t0))
	assert.False(t, p.IsDue(t0.Add(-time.Second)))

	p.Status = entity.PaymentStatusExecuted
	assert.False(t, p.IsDue(t0.Add(time.Hour)))
}

func TestPayment_Validate(t *testing.T) {
	assert.NoError(t, supplierPayment().Validate())

	bad := supplierPayment()
	bad.CommissionPercentage = pct("3")
	assert.Error(t, bad.Validate(), "descuento y comisión son excluyentes")

	neg := supplierPayment()
	neg.Amount = decimal.NewFromInt(-1)
	assert.Error(t, neg.Validate())
}

func TestInvoice_MarkFunded(t *testing.T) {
	inv := &entity.Invoice{ID: "f-1", Status: entity.InvoiceStatusApproved}
	assert.True(t, inv.MarkFunded(t0))
	assert.Equal(t, entity.InvoiceStatusFunded, inv.Status)
	assert.False(t, inv.MarkFunded(t0))

	assert.True(t, inv.MarkPaid(t0))
	assert.Equal(t, entity.InvoiceStatusPaid, inv.Status)
}

func TestInvoice_Validate(t *testing.T) {
	inv := &entity.Invoice{ID: "f-1", OperationType: entity.OperationFactoring, Amount: decimal.NewFromInt(100), Confirming: &entity.ConfirmingTerms{}}
	assert.Error(t, inv.Validate(), "factoring no lleva campos de confirming")

	inv.OperationType = entity.OperationConfirming
	assert.NoError(t, inv.Validate())
}

func TestInvestment_Transiciones(t *testing.T) {
	inv := &entity.Investment{ID: "i-1", Status: entity.InvestmentStatusActive}
	require.True(t, inv.Complete(decimal.NewFromInt(300), t0))
	assert.Equal(t, entity.InvestmentStatusCompleted, inv.Status)
	require.NotNil(t, inv.ActualReturn)
	assert.False(t, inv.Default(t0))
	assert.False(t, inv.Cancel(t0))

	other := &entity.Investment{ID: "i-2", Status: entity.InvestmentStatusActive}
	assert.True(t, other.Default(t0))
	assert.Equal(t, entity.InvestmentStatusDefaulted, other.Status)
}
