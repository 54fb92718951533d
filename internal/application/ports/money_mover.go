package ports

import (
	"context"

	"github.com/jhoicas/factoring-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// TransferRequest orden de transferencia para un pago programado.
// IdempotencyKey es el id del pago: la pasarela no debe mover dinero dos veces por la misma clave.
type TransferRequest struct {
	IdempotencyKey string
	PaymentType    entity.PaymentType
	Amount         decimal.Decimal
	PayerID        string
	PayeeID        string // vacío cuando el beneficiario es externo (proveedor)
	ExternalName   string
	ExternalTaxID  string
	InvoiceID      string
}

// TransferReceipt comprobante devuelto por la pasarela.
type TransferReceipt struct {
	Reference string
}

// MoneyMover puerto de salida que ejecuta movimientos de dinero.
// Un error significa que la transferencia no se realizó; su texto se guarda como motivo del fallo.
type MoneyMover interface {
	Transfer(ctx context.Context, req TransferRequest) (*TransferReceipt, error)
}
