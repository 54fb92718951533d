package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/factoring-api/internal/domain/entity"
)

func TestPaymentVoucher_GeneraPDF(t *testing.T) {
	executed := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	discount := decimal.NewFromInt(5)
	applied := decimal.NewFromInt(500)
	p := &entity.Payment{
		ID: "pay-1", InvestmentID: "i-1", InvoiceID: "f-1", PayerID: "u-inv",
		Type:               entity.PaymentTypeToSupplier,
		Amount:             decimal.RequireFromString("9500.00"),
		OriginalAmount:     decimal.NewFromInt(10000),
		DiscountPercentage: &discount,
		ExecutedDate:       &executed,
		Status:             entity.PaymentStatusExecuted,
		TransferReference:  "TRX-001",
		Metadata: entity.PaymentMetadata{
			OperationType:         entity.OperationConfirming,
			OriginalInvoiceAmount: decimal.NewFromInt(10000),
			DiscountApplied:       &applied,
			SupplierName:          "Proveedor SAS",
			SupplierTaxID:         "900123456",
		},
	}
	invoice := &entity.Invoice{ID: "f-1", Number: "FE-100", OperationType: entity.OperationConfirming}

	out, err := NewMarotoPDFGenerator().PaymentVoucher(p, invoice)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPaymentVoucher_SinFactura(t *testing.T) {
	_, err := NewMarotoPDFGenerator().PaymentVoucher(&entity.Payment{ID: "pay-1"}, nil)
	assert.Error(t, err)
}

func TestTypeLabel(t *testing.T) {
	assert.Equal(t, "Pago anticipado al proveedor", typeLabel(entity.PaymentTypeToSupplier))
	assert.Equal(t, "Cobro a la empresa al vencimiento", typeLabel(entity.PaymentTypeChargeToCompany))
	assert.Equal(t, "otro", typeLabel(entity.PaymentType("otro")))
}
