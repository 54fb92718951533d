package payments_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/factoring-api/internal/application/dto"
	"github.com/jhoicas/factoring-api/internal/application/payments"
	"github.com/jhoicas/factoring-api/internal/domain"
	"github.com/jhoicas/factoring-api/internal/domain/entity"
)

type stubVoucher struct{ calls int }

func (v *stubVoucher) PaymentVoucher(p *entity.Payment, _ *entity.Invoice) ([]byte, error) {
	v.calls++
	return []byte("%PDF-" + p.ID), nil
}

func TestQuery_ListByInvestment_Visibilidad(t *testing.T) {
	s := seed(t, nil)
	_, err := derivation(s).Derive(context.Background(), "i-1")
	require.NoError(t, err)
	q := payments.NewQueryUseCase(s.Payments(), s.Investments(), s.Invoices(), nil)

	for _, actor := range []dto.Actor{
		{UserID: "u-inv", Role: entity.RoleInvestor},
		{UserID: "u-emp", CompanyID: "c-1", Role: entity.RoleCompany},
		{UserID: "u-admin", Role: entity.RoleAdmin},
	} {
		list, err := q.ListByInvestment(context.Background(), actor, "i-1")
		require.NoError(t, err, "rol %s", actor.Role)
		assert.Len(t, list, 2)
	}

	_, err = q.ListByInvestment(context.Background(), dto.Actor{UserID: "u-otro", Role: entity.RoleInvestor}, "i-1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = q.ListByInvestment(context.Background(), dto.Actor{UserID: "u-admin", Role: entity.RoleAdmin}, "i-x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQuery_Voucher_SoloPagosEjecutados(t *testing.T) {
	s := seed(t, nil)
	out, err := derivation(s).Derive(context.Background(), "i-1")
	require.NoError(t, err)
	supplierID := byType(out, entity.PaymentTypeToSupplier).ID

	gen := &stubVoucher{}
	q := payments.NewQueryUseCase(s.Payments(), s.Investments(), s.Invoices(), gen)
	investor := dto.Actor{UserID: "u-inv", Role: entity.RoleInvestor}

	_, err = q.Voucher(context.Background(), investor, supplierID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	ok, err := s.Payments().MarkExecuted(context.Background(), supplierID, "TRX-9", now)
	require.NoError(t, err)
	require.True(t, ok)

	pdf, err := q.Voucher(context.Background(), investor, supplierID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-"+supplierID, string(pdf))
	assert.Equal(t, 1, gen.calls)

	got, err := q.Get(context.Background(), investor, supplierID)
	require.NoError(t, err)
	assert.Equal(t, "executed", got.Status)
	assert.Equal(t, "TRX-9", got.TransferReference)
}
