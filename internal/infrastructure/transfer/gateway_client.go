package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/factoring-api/internal/application/ports"
	"github.com/shopspring/decimal"
)

// Verificar en tiempo de compilación que GatewayClient implementa MoneyMover.
var _ ports.MoneyMover = (*GatewayClient)(nil)

const transfersPath = "/v1/transfers"

// GatewayClient adaptador que implementa MoneyMover contra la API REST de la pasarela bancaria.
// Usa net/http de la librería estándar; la pasarela no publica SDK para Go.
type GatewayClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewGatewayClient construye el adaptador.
// Si apiKey está vacío las llamadas devuelven error descriptivo en lugar de panic.
func NewGatewayClient(baseURL, apiKey string) *GatewayClient {
	return NewGatewayClientWithHTTP(baseURL, apiKey, &http.Client{Timeout: 30 * time.Second})
}

// NewGatewayClientWithHTTP permite inyectar el cliente HTTP (tests con httptest).
func NewGatewayClientWithHTTP(baseURL, apiKey string, httpClient *http.Client) *GatewayClient {
	return &GatewayClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// ── Protocolo de la pasarela ──────────────────────────────────────────────────

type transferRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Concept     string          `json:"concept"`
	Reference   string          `json:"reference"`
	Payer       account         `json:"payer"`
	Beneficiary account         `json:"beneficiary"`
}

type account struct {
	UserID string `json:"user_id,omitempty"`
	Name   string `json:"name,omitempty"`
	TaxID  string `json:"tax_id,omitempty"`
}

type transferResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ── Implementación del puerto ─────────────────────────────────────────────────

// Transfer envía la orden con la clave de idempotencia del pago.
// Un reintento con la misma clave devuelve la transferencia original.
func (c *GatewayClient) Transfer(ctx context.Context, in ports.TransferRequest) (*ports.TransferReceipt, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("transfer: PAYMENTS_GATEWAY_KEY no configurado")
	}

	body, err := json.Marshal(transferRequest{
		Amount:    in.Amount,
		Currency:  "COP",
		Concept:   string(in.PaymentType),
		Reference: in.InvoiceID,
		Payer:     account{UserID: in.PayerID},
		Beneficiary: account{
			UserID: in.PayeeID,
			Name:   in.ExternalName,
			TaxID:  in.ExternalTaxID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("transfer: serializar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+transfersPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("transfer: crear HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Idempotency-Key", in.IdempotencyKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("transfer: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("transfer: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("transfer: leer respuesta: %w", err)
	}

	var out transferResponse
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		if jsonErr := json.Unmarshal(raw, &out); jsonErr == nil && out.Error != nil {
			return nil, fmt.Errorf("transfer: rechazada (%s): %s", out.Error.Code, out.Error.Message)
		}
		return nil, fmt.Errorf("transfer: HTTP %d: %s", resp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("transfer: deserializar respuesta: %w", err)
	}
	if out.ID == "" {
		return nil, fmt.Errorf("transfer: la pasarela no devolvió referencia")
	}
	if out.Status == "rejected" {
		return nil, fmt.Errorf("transfer: rechazada por la pasarela (%s)", out.ID)
	}
	return &ports.TransferReceipt{Reference: out.ID}, nil
}
