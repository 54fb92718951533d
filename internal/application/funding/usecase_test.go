package funding_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/factoring-api/internal/application/apptest"
	"github.com/jhoicas/factoring-api/internal/application/dto"
	"github.com/jhoicas/factoring-api/internal/application/funding"
	"github.com/jhoicas/factoring-api/internal/application/parties"
	"github.com/jhoicas/factoring-api/internal/domain"
	"github.com/jhoicas/factoring-api/internal/domain/entity"
	"github.com/jhoicas/factoring-api/pkg/logger"
)

var (
	now      = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	due      = time.Date(2026, 9, 29, 0, 0, 0, 0, time.UTC)
	investor = dto.Actor{UserID: "u-inv", Role: entity.RoleInvestor}
	admin    = dto.Actor{UserID: "u-admin", Role: entity.RoleAdmin}
)

func pct(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func seed(t *testing.T) *apptest.Store {
	t.Helper()
	s := apptest.NewStore()
	s.PutUser(&entity.User{ID: "u-inv", Role: entity.RoleInvestor})
	s.PutUser(&entity.User{ID: "u-emp", CompanyID: "c-1", Role: entity.RoleCompany})
	s.PutCompany(&entity.Company{ID: "c-1", UserID: "u-emp"})

	s.PutInvoice(&entity.Invoice{
		ID: "f-fact", CompanyID: "c-1", Amount: decimal.NewFromInt(50000),
		OperationType: entity.OperationFactoring, Status: entity.InvoiceStatusApproved, DueDate: due,
	})
	s.PutInvoice(&entity.Invoice{
		ID: "f-conf", CompanyID: "c-1", Amount: decimal.NewFromInt(10000),
		OperationType: entity.OperationConfirming, Status: entity.InvoiceStatusApproved, DueDate: due,
		Confirming: &entity.ConfirmingTerms{EarlyPaymentDiscount: pct("5"), ConfirmingCommission: pct("3"), AdvanceRequest: true},
	})

	s.PutProposal(&entity.InvestmentProposal{
		ID: "p-fact", InvestorID: "u-inv", InvoiceID: "f-fact", OperationType: entity.OperationFactoring,
		Status:    entity.ProposalStatusApproved,
		Factoring: &entity.FactoringTerms{AdvancePercentage: pct("80"), FactoringCommission: pct("2")},
	})
	s.PutProposal(&entity.InvestmentProposal{
		ID: "p-conf", InvestorID: "u-inv", InvoiceID: "f-conf", OperationType: entity.OperationConfirming,
		Status:     entity.ProposalStatusApproved,
		Confirming: &entity.ConfirmingOffer{ConfirmingCommission: pct("3")},
	})
	s.PutProposal(&entity.InvestmentProposal{
		ID: "p-sent", InvestorID: "u-inv", InvoiceID: "f-fact", OperationType: entity.OperationFactoring,
		Status:    entity.ProposalStatusSent,
		Factoring: &entity.FactoringTerms{AdvancePercentage: pct("80"), FactoringCommission: pct("2")},
	})
	return s
}

func newUseCase(s *apptest.Store) *funding.UseCase {
	return funding.NewUseCase(s, s.Proposals(), s.Investments(), s.Invoices(), parties.NewResolver(s.Companies(), s.Users()), logger.Nop()).
		WithClock(func() time.Time { return now })
}

func TestFundProposal_Factoring(t *testing.T) {
	s := seed(t)
	resp, err := newUseCase(s).FundProposal(context.Background(), investor, "p-fact")
	require.NoError(t, err)

	assert.Equal(t, "40000", resp.Amount.String())
	assert.Equal(t, "800", resp.ExpectedReturn.String())
	assert.Equal(t, "2", resp.ReturnRate.String())
	assert.Equal(t, due, resp.MaturityDate)
	assert.Equal(t, "active", resp.Status)
	assert.Empty(t, resp.Payments, "factoring no deriva pagos")

	inv, _ := s.Invoice("f-fact")
	assert.Equal(t, entity.InvoiceStatusFunded, inv.Status)
	assert.Equal(t, 0, s.CountPayments())
}

func TestFundProposal_ConfirmingConAnticipo_DerivaPagos(t *testing.T) {
	s := seed(t)
	resp, err := newUseCase(s).FundProposal(context.Background(), investor, "p-conf")
	require.NoError(t, err)

	assert.Equal(t, "9500", resp.Amount.String())
	assert.Equal(t, "300", resp.ExpectedReturn.String())
	require.Len(t, resp.Payments, 2)
	assert.Equal(t, 2, s.CountPayments())
}

func TestFundProposal_FalloAlDerivar_RevierteTodo(t *testing.T) {
	s := seed(t)
	s.FailPaymentCreate = func(p *entity.Payment) error {
		if p.Type == entity.PaymentTypeChargeToCompany {
			return apptest.ErrInjected
		}
		return nil
	}
	_, err := newUseCase(s).FundProposal(context.Background(), investor, "p-conf")
	assert.ErrorIs(t, err, apptest.ErrInjected)

	assert.Equal(t, 0, s.CountInvestments())
	assert.Equal(t, 0, s.CountPayments())
	inv, _ := s.Invoice("f-conf")
	assert.Equal(t, entity.InvoiceStatusApproved, inv.Status, "la factura sigue aprobada")
}

func TestFundProposal_PropuestaNoAprobada(t *testing.T) {
	s := seed(t)
	_, err := newUseCase(s).FundProposal(context.Background(), investor, "p-sent")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, 0, s.CountInvestments())
}

func TestFundProposal_FacturaYaFinanciada(t *testing.T) {
	s := seed(t)
	uc := newUseCase(s)
	_, err := uc.FundProposal(context.Background(), investor, "p-fact")
	require.NoError(t, err)

	s.PutProposal(&entity.InvestmentProposal{
		ID: "p-fact-2", InvestorID: "u-inv", InvoiceID: "f-fact", OperationType: entity.OperationFactoring,
		Status:    entity.ProposalStatusApproved,
		Factoring: &entity.FactoringTerms{AdvancePercentage: pct("90"), FactoringCommission: pct("1")},
	})
	_, err = uc.FundProposal(context.Background(), investor, "p-fact-2")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 1, s.CountInvestments())
}

func TestFundProposal_OtroInversionista(t *testing.T) {
	s := seed(t)
	_, err := newUseCase(s).FundProposal(context.Background(), dto.Actor{UserID: "u-otro", Role: entity.RoleInvestor}, "p-fact")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestComplete_MarcaFacturaPagada(t *testing.T) {
	s := seed(t)
	uc := newUseCase(s)
	funded, err := uc.FundProposal(context.Background(), investor, "p-fact")
	require.NoError(t, err)

	_, err = uc.Complete(context.Background(), investor, funded.ID, dto.CompleteInvestmentRequest{ActualReturn: decimal.NewFromInt(800)})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	resp, err := uc.Complete(context.Background(), admin, funded.ID, dto.CompleteInvestmentRequest{ActualReturn: decimal.RequireFromString("812.345")})
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
	require.NotNil(t, resp.ActualReturn)
	assert.Equal(t, "812.35", resp.ActualReturn.String())

	inv, _ := s.Invoice("f-fact")
	assert.Equal(t, entity.InvoiceStatusPaid, inv.Status)

	_, err = uc.Default(context.Background(), admin, funded.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestComplete_FacturaNoFinanciada_Revierte(t *testing.T) {
	s := seed(t)
	uc := newUseCase(s)
	funded, err := uc.FundProposal(context.Background(), investor, "p-fact")
	require.NoError(t, err)

	// Otro proceso movió la factura fuera de funded.
	invoice, _ := s.Invoice("f-fact")
	invoice.Status = entity.InvoiceStatusPaid
	s.PutInvoice(&invoice)

	_, err = uc.Complete(context.Background(), admin, funded.ID, dto.CompleteInvestmentRequest{ActualReturn: decimal.NewFromInt(800)})
	assert.ErrorIs(t, err, domain.ErrConflict)

	inv, ok := s.Investment(funded.ID)
	require.True(t, ok)
	assert.Equal(t, entity.InvestmentStatusActive, inv.Status, "la inversión sigue activa")
	assert.Nil(t, inv.ActualReturn)
}

func TestDefault_InversionEnMora(t *testing.T) {
	s := seed(t)
	uc := newUseCase(s)
	funded, err := uc.FundProposal(context.Background(), investor, "p-fact")
	require.NoError(t, err)

	resp, err := uc.Default(context.Background(), admin, funded.ID)
	require.NoError(t, err)
	assert.Equal(t, "defaulted", resp.Status)

	stored, _ := s.Investment(funded.ID)
	assert.Equal(t, entity.InvestmentStatusDefaulted, stored.Status)
}

func TestGet_Visibilidad(t *testing.T) {
	s := seed(t)
	uc := newUseCase(s)
	funded, err := uc.FundProposal(context.Background(), investor, "p-fact")
	require.NoError(t, err)

	for _, actor := range []dto.Actor{
		investor,
		admin,
		{UserID: "u-emp", CompanyID: "c-1", Role: entity.RoleCompany},
	} {
		got, err := uc.Get(context.Background(), actor, funded.ID)
		require.NoError(t, err, "rol %s", actor.Role)
		assert.Equal(t, funded.ID, got.ID)
	}

	_, err = uc.Get(context.Background(), dto.Actor{UserID: "u-x", CompanyID: "c-2", Role: entity.RoleCompany}, funded.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = uc.Get(context.Background(), admin, "i-x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListMine(t *testing.T) {
	s := seed(t)
	uc := newUseCase(s)
	_, err := uc.FundProposal(context.Background(), investor, "p-fact")
	require.NoError(t, err)
	_, err = uc.FundProposal(context.Background(), investor, "p-conf")
	require.NoError(t, err)

	list, err := uc.ListMine(context.Background(), investor, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = uc.ListMine(context.Background(), admin, dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
