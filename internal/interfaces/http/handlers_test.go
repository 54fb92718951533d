package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/factoring-api/internal/application/apptest"
	"github.com/jhoicas/factoring-api/internal/application/dto"
	"github.com/jhoicas/factoring-api/internal/application/funding"
	"github.com/jhoicas/factoring-api/internal/application/parties"
	"github.com/jhoicas/factoring-api/internal/application/payments"
	"github.com/jhoicas/factoring-api/internal/application/proposal"
	"github.com/jhoicas/factoring-api/internal/domain/entity"
	apphttp "github.com/jhoicas/factoring-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/factoring-api/pkg/jwt"
	"github.com/jhoicas/factoring-api/pkg/logger"
)

const invoiceID = "11111111-1111-4111-8111-111111111111"

var fixedNow = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

type pdfStub struct{}

func (pdfStub) PaymentVoucher(p *entity.Payment, _ *entity.Invoice) ([]byte, error) {
	return []byte("%PDF-1.4 " + p.ID), nil
}

func pct(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// apiFixture arma la API completa sobre el store en memoria.
func apiFixture(t *testing.T) (*fiber.App, *apptest.Store) {
	t.Helper()
	s := apptest.NewStore()
	s.PutUser(&entity.User{ID: "u-inv", Role: entity.RoleInvestor, Email: "inv@fondo.co"})
	s.PutUser(&entity.User{ID: "u-emp", CompanyID: "c-1", Role: entity.RoleCompany, Email: "pagos@empresa.co"})
	s.PutCompany(&entity.Company{ID: "c-1", Name: "Empresa SAS", UserID: "u-emp"})
	s.PutInvoice(&entity.Invoice{
		ID: invoiceID, CompanyID: "c-1", Number: "FE-1", Amount: decimal.NewFromInt(10000),
		OperationType: entity.OperationConfirming, Status: entity.InvoiceStatusApproved,
		DueDate: fixedNow.AddDate(0, 0, 90),
		Confirming: &entity.ConfirmingTerms{
			SupplierName: "Proveedor SAS", SupplierTaxID: "900123456",
			EarlyPaymentDiscount: pct("5"), ConfirmingCommission: pct("3"), AdvanceRequest: true,
		},
	})

	clock := func() time.Time { return fixedNow }
	resolver := parties.NewResolver(s.Companies(), s.Users())
	log := logger.Nop()

	proposalUC := proposal.NewUseCase(s, s.Proposals(), s.Invoices(), resolver, &apptest.Notifier{}, log, proposal.Config{DefaultExpiryDays: 7}).WithClock(clock)
	fundingUC := funding.NewUseCase(s, s.Proposals(), s.Investments(), s.Invoices(), resolver, log).WithClock(clock)
	derivationUC := payments.NewDerivationUseCase(s, s.Investments(), s.Invoices(), resolver, log).WithClock(clock)
	sweepUC := payments.NewSweepUseCase(s.Payments(), &apptest.Mover{}, &apptest.Locker{}, time.Minute, log)
	queryUC := payments.NewQueryUseCase(s.Payments(), s.Investments(), s.Invoices(), pdfStub{})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ProposalUC:     proposalUC,
		FundingUC:      fundingUC,
		DerivationUC:   derivationUC,
		SweepUC:        sweepUC,
		PaymentQueryUC: queryUC,
		JWTSecret:      testJWTSecret,
		Now:            clock,
	})
	return app, s
}

func bearer(t *testing.T, userID, companyID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, companyID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func call(t *testing.T, app *fiber.App, method, path, auth string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestAPI_FlujoCompletoConfirming(t *testing.T) {
	app, s := apiFixture(t)
	investor := bearer(t, "u-inv", "", "investor")
	company := bearer(t, "u-emp", "c-1", "company")
	admin := bearer(t, "u-admin", "", "admin")

	resp := call(t, app, http.MethodPost, "/api/proposals", investor, map[string]any{
		"invoice_id":            invoiceID,
		"confirming_commission": "3",
		"message":               "pago anticipado",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.ProposalResponse](t, resp)
	assert.Equal(t, "draft", created.Status)
	require.NotNil(t, created.ExpectedReturn)
	assert.Equal(t, "300", created.ExpectedReturn.String())

	resp = call(t, app, http.MethodPost, "/api/proposals/"+created.ID+"/send", investor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodPost, "/api/proposals/"+created.ID+"/send", investor, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	te := decode[dto.TransitionErrorResponse](t, resp)
	assert.Equal(t, "INVALID_TRANSITION", te.Code)
	assert.Equal(t, "send", te.Action)
	assert.Equal(t, "sent", te.FromStatus)

	resp = call(t, app, http.MethodPost, "/api/proposals/"+created.ID+"/approve", company, map[string]any{"notes": "ok"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "approved", decode[dto.ProposalResponse](t, resp).Status)

	resp = call(t, app, http.MethodPost, "/api/proposals/"+created.ID+"/fund", investor, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	investment := decode[dto.InvestmentResponse](t, resp)
	require.Len(t, investment.Payments, 2)

	resp = call(t, app, http.MethodPost, "/api/admin/investments/"+investment.ID+"/derive-payments", admin, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "los pagos ya se derivaron al financiar")
	resp.Body.Close()

	resp = call(t, app, http.MethodPost, "/api/admin/payments/sweep", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sweep := decode[dto.SweepResponse](t, resp)
	assert.Equal(t, 1, sweep.Executed, "solo el pago al proveedor está vencido")
	require.Len(t, sweep.Outcomes, 1)
	supplierID := sweep.Outcomes[0].PaymentID

	stored, ok := s.Payment(supplierID)
	require.True(t, ok)
	assert.Equal(t, entity.PaymentStatusExecuted, stored.Status)

	resp = call(t, app, http.MethodGet, "/api/payments/"+supplierID+"/voucher", company, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "%PDF-1.4 "+supplierID, string(body))

	resp = call(t, app, http.MethodGet, "/api/investments/"+investment.ID+"/payments", investor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.PaymentResponse](t, resp), 2)
}

func TestAPI_CrearPropuesta_RolEmpresaProhibido(t *testing.T) {
	app, _ := apiFixture(t)
	resp := call(t, app, http.MethodPost, "/api/proposals", bearer(t, "u-emp", "c-1", "company"), map[string]any{
		"invoice_id": invoiceID, "confirming_commission": "3",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_CrearPropuesta_Validacion(t *testing.T) {
	app, _ := apiFixture(t)
	investor := bearer(t, "u-inv", "", "investor")

	resp := call(t, app, http.MethodPost, "/api/proposals", investor, map[string]any{"invoice_id": "no-es-uuid"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, resp).Code)

	resp = call(t, app, http.MethodPost, "/api/proposals", investor, map[string]any{
		"invoice_id": invoiceID, "advance_percentage": "80", "factoring_commission": "2",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "condiciones de factoring sobre factura de confirming")
	resp.Body.Close()

	resp = call(t, app, http.MethodPost, "/api/proposals", investor, map[string]any{
		"invoice_id": "22222222-2222-4222-8222-222222222222", "confirming_commission": "3",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_ListarPropuestas_LimiteInvalido(t *testing.T) {
	app, _ := apiFixture(t)
	resp := call(t, app, http.MethodGet, "/api/proposals?limit=500", bearer(t, "u-inv", "", "investor"), nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_SinToken(t *testing.T) {
	app, _ := apiFixture(t)
	resp := call(t, app, http.MethodGet, "/api/proposals", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_AdminSoloAdmin(t *testing.T) {
	app, _ := apiFixture(t)
	resp := call(t, app, http.MethodPost, "/api/admin/payments/sweep", bearer(t, "u-inv", "", "investor"), nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_ExpirarVencidas(t *testing.T) {
	app, s := apiFixture(t)
	expired := fixedNow.Add(-time.Hour)
	s.PutProposal(&entity.InvestmentProposal{
		ID: "p-old", InvestorID: "u-inv", InvoiceID: invoiceID, OperationType: entity.OperationConfirming,
		Status: entity.ProposalStatusSent, ExpiresAt: &expired,
		Confirming: &entity.ConfirmingOffer{ConfirmingCommission: pct("3")},
	})

	resp := call(t, app, http.MethodPost, "/api/admin/proposals/expire", bearer(t, "u-admin", "", "admin"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"p-old"}, decode[dto.ExpireDueResponse](t, resp).Expired)

	p, _ := s.Proposal("p-old")
	assert.Equal(t, entity.ProposalStatusExpired, p.Status)
}
