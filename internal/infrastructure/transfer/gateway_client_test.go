package transfer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/factoring-api/internal/application/ports"
	"github.com/jhoicas/factoring-api/internal/domain/entity"
	"github.com/jhoicas/factoring-api/pkg/logger"
)

func supplierRequest() ports.TransferRequest {
	return ports.TransferRequest{
		IdempotencyKey: "pay-1",
		PaymentType:    entity.PaymentTypeToSupplier,
		Amount:         decimal.RequireFromString("9500.00"),
		PayerID:        "u-inv",
		ExternalName:   "Proveedor SAS",
		ExternalTaxID:  "900123456",
		InvoiceID:      "f-1",
	}
}

func TestGatewayClient_Transfer_OK(t *testing.T) {
	var got transferRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, transfersPath, r.URL.Path)
		assert.Equal(t, "Bearer k-1", r.Header.Get("Authorization"))
		assert.Equal(t, "pay-1", r.Header.Get("Idempotency-Key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"TRX-77","status":"accepted"}`))
	}))
	defer srv.Close()

	c := NewGatewayClientWithHTTP(srv.URL+"/", "k-1", srv.Client())
	receipt, err := c.Transfer(context.Background(), supplierRequest())
	require.NoError(t, err)
	assert.Equal(t, "TRX-77", receipt.Reference)

	assert.True(t, decimal.RequireFromString("9500").Equal(got.Amount))
	assert.Equal(t, "Proveedor SAS", got.Beneficiary.Name)
	assert.Equal(t, "900123456", got.Beneficiary.TaxID)
	assert.Empty(t, got.Beneficiary.UserID)
	assert.Equal(t, "u-inv", got.Payer.UserID)
}

func TestGatewayClient_Transfer_Rechazada(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":{"code":"insufficient_funds","message":"saldo insuficiente"}}`))
	}))
	defer srv.Close()

	_, err := NewGatewayClientWithHTTP(srv.URL, "k-1", srv.Client()).Transfer(context.Background(), supplierRequest())
	assert.ErrorContains(t, err, "insufficient_funds")
}

func TestGatewayClient_Transfer_SinReferencia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"accepted"}`))
	}))
	defer srv.Close()

	_, err := NewGatewayClientWithHTTP(srv.URL, "k-1", srv.Client()).Transfer(context.Background(), supplierRequest())
	assert.Error(t, err)
}

func TestGatewayClient_SinAPIKey(t *testing.T) {
	_, err := NewGatewayClient("http://localhost", "").Transfer(context.Background(), supplierRequest())
	assert.ErrorContains(t, err, "PAYMENTS_GATEWAY_KEY")
}

func TestSimulatedMover(t *testing.T) {
	m := NewSimulatedMover(logger.Nop())
	r, err := m.Transfer(context.Background(), supplierRequest())
	require.NoError(t, err)
	assert.Regexp(t, `^SIM-[0-9A-F]{8}$`, r.Reference)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Transfer(ctx, supplierRequest())
	assert.ErrorIs(t, err, context.Canceled)
}
