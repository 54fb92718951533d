package payments_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/factoring-api/internal/application/apptest"
	"github.com/jhoicas/factoring-api/internal/application/dto"
	"github.com/jhoicas/factoring-api/internal/application/payments"
	"github.com/jhoicas/factoring-api/internal/application/ports"
	"github.com/jhoicas/factoring-api/internal/domain"
	"github.com/jhoicas/factoring-api/internal/domain/entity"
	"github.com/jhoicas/factoring-api/pkg/logger"
)

func pendingPayment(id string, typ entity.PaymentType, scheduled time.Time) *entity.Payment {
	p := &entity.Payment{
		ID: id, InvestmentID: "i-1", InvoiceID: "f-1", PayerID: "u-inv",
		Type: typ, Amount: decimal.NewFromInt(9500), OriginalAmount: decimal.NewFromInt(10000),
		ScheduledDate: scheduled, Status: entity.PaymentStatusPending,
		Metadata: entity.PaymentMetadata{SupplierName: "Textiles del Valle", SupplierTaxID: "900123456"},
	}
	if typ == entity.PaymentTypeChargeToCompany {
		payee := "u-inv"
		p.PayerID = "u-emp"
		p.PayeeID = &payee
	}
	return p
}

func outcomeOf(res *dto.SweepResponse, id string) dto.SweepOutcome {
	for _, o := range res.Outcomes {
		if o.PaymentID == id {
			return o
		}
	}
	return dto.SweepOutcome{}
}

func newSweep(s *apptest.Store, mover *apptest.Mover, locker *apptest.Locker) *payments.SweepUseCase {
	return payments.NewSweepUseCase(s.Payments(), mover, locker, time.Minute, logger.Nop())
}

func TestExecuteDue_UnoFallaOtroSeEjecuta(t *testing.T) {
	s := apptest.NewStore()
	s.PutPayment(pendingPayment("pay-a", entity.PaymentTypeToSupplier, now.Add(-time.Hour)))
	s.PutPayment(pendingPayment("pay-b", entity.PaymentTypeToSupplier, now.Add(-time.Minute)))
	s.PutPayment(pendingPayment("pay-futuro", entity.PaymentTypeChargeToCompany, due))

	mover := &apptest.Mover{FailFor: map[string]error{"pay-a": errors.New("cuenta destino bloqueada")}}
	res, err := newSweep(s, mover, &apptest.Locker{}).ExecuteDue(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 1, res.Executed)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, dto.SweepOutcomeFailed, outcomeOf(res, "pay-a").Outcome)
	assert.Equal(t, "cuenta destino bloqueada", outcomeOf(res, "pay-a").Detail)
	assert.Equal(t, dto.SweepOutcomeSuccess, outcomeOf(res, "pay-b").Outcome)

	a, _ := s.Payment("pay-a")
	assert.Equal(t, entity.PaymentStatusFailed, a.Status)
	assert.Equal(t, "cuenta destino bloqueada", a.FailureReason)
	assert.Nil(t, a.ExecutedDate)

	b, _ := s.Payment("pay-b")
	assert.Equal(t, entity.PaymentStatusExecuted, b.Status)
	require.NotNil(t, b.ExecutedDate)
	assert.Equal(t, now, *b.ExecutedDate)
	assert.NotEmpty(t, b.TransferReference)

	future, _ := s.Payment("pay-futuro")
	assert.Equal(t, entity.PaymentStatusPending, future.Status, "un pago no vencido no se toca")
}

func TestExecuteDue_SegundaPasada_NoRepite(t *testing.T) {
	s := apptest.NewStore()
	s.PutPayment(pendingPayment("pay-a", entity.PaymentTypeToSupplier, now))
	mover := &apptest.Mover{}
	uc := newSweep(s, mover, &apptest.Locker{})

	first, err := uc.ExecuteDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Executed)

	second, err := uc.ExecuteDue(context.Background(), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, second.Processed)
	assert.Equal(t, 1, mover.Calls(), "no se mueve dinero dos veces")
}

func TestExecuteDue_SolicitudDeTransferencia(t *testing.T) {
	s := apptest.NewStore()
	s.PutPayment(pendingPayment("pay-prov", entity.PaymentTypeToSupplier, now))
	s.PutPayment(pendingPayment("pay-emp", entity.PaymentTypeChargeToCompany, now))
	mover := &apptest.Mover{}

	_, err := newSweep(s, mover, &apptest.Locker{}).ExecuteDue(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, mover.Requests, 2)

	for _, req := range mover.Requests {
		switch req.IdempotencyKey {
		case "pay-prov":
			assert.Empty(t, req.PayeeID)
			assert.Equal(t, "Textiles del Valle", req.ExternalName)
			assert.Equal(t, "900123456", req.ExternalTaxID)
		case "pay-emp":
			assert.Equal(t, "u-inv", req.PayeeID)
			assert.Equal(t, "u-emp", req.PayerID)
			assert.Empty(t, req.ExternalName)
		default:
			t.Fatalf("clave de idempotencia inesperada %q", req.IdempotencyKey)
		}
	}
}

func TestExecuteDue_PagoCerradoPorOtroProceso_Omitido(t *testing.T) {
	s := apptest.NewStore()
	s.PutPayment(pendingPayment("pay-a", entity.PaymentTypeToSupplier, now))

	// La pasarela ejecuta y, antes de registrar, otro proceso cierra el pago.
	mover := &closingMover{store: s}
	res, err := payments.NewSweepUseCase(s.Payments(), mover, &apptest.Locker{}, time.Minute, logger.Nop()).ExecuteDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, dto.SweepOutcomeSkipped, outcomeOf(res, "pay-a").Outcome)
	assert.Equal(t, 0, res.Executed)
}

func TestExecuteDue_CandadoTomado(t *testing.T) {
	s := apptest.NewStore()
	s.PutPayment(pendingPayment("pay-a", entity.PaymentTypeToSupplier, now))
	locker := &apptest.Locker{}
	release, err := locker.Acquire(context.Background(), payments.SweepLockKey, time.Minute)
	require.NoError(t, err)

	mover := &apptest.Mover{}
	_, err = newSweep(s, mover, locker).ExecuteDue(context.Background(), now)
	assert.ErrorIs(t, err, domain.ErrSweepInProgress)
	assert.True(t, payments.IsSweepInProgress(err))
	assert.Equal(t, 0, mover.Calls())

	require.NoError(t, release(context.Background()))
	res, err := newSweep(s, mover, locker).ExecuteDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Executed)
}

type closingMover struct {
	store *apptest.Store
}

func (m *closingMover) Transfer(ctx context.Context, req ports.TransferRequest) (*ports.TransferReceipt, error) {
	if _, err := m.store.Payments().MarkExecuted(ctx, req.IdempotencyKey, "OTRO", now); err != nil {
		return nil, err
	}
	return &ports.TransferReceipt{Reference: "TRX-1"}, nil
}

// blockingMover retiene la primera transferencia hasta que se cierre release.
type blockingMover struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (m *blockingMover) Transfer(context.Context, ports.TransferRequest) (*ports.TransferReceipt, error) {
	if m.calls.Add(1) == 1 {
		close(m.started)
	}
	<-m.release
	return &ports.TransferReceipt{Reference: "TRX-1"}, nil
}

func TestExecuteDue_DosProcesosNoTransfierenDosVeces(t *testing.T) {
	s := apptest.NewStore()
	s.PutPayment(pendingPayment("pay-a", entity.PaymentTypeToSupplier, now))
	mover := &blockingMover{started: make(chan struct{}), release: make(chan struct{})}

	// Cada proceso con su propio candado en memoria, sobre la misma base.
	first := payments.NewSweepUseCase(s.Payments(), mover, &apptest.Locker{}, time.Minute, logger.Nop())
	second := payments.NewSweepUseCase(s.Payments(), mover, &apptest.Locker{}, time.Minute, logger.Nop())

	type result struct {
		res *dto.SweepResponse
		err error
	}
	done := make(chan result, 1)
	go func() {
		res, err := first.ExecuteDue(context.Background(), now)
		done <- result{res, err}
	}()
	<-mover.started

	res, err := second.ExecuteDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, dto.SweepOutcomeSkipped, outcomeOf(res, "pay-a").Outcome)
	assert.Equal(t, 0, res.Executed)

	close(mover.release)
	r := <-done
	require.NoError(t, r.err)
	assert.Equal(t, dto.SweepOutcomeSuccess, outcomeOf(r.res, "pay-a").Outcome)
	assert.Equal(t, int32(1), mover.calls.Load())
	assert.Equal(t, entity.PaymentStatusExecuted, paymentStatus(t, s, "pay-a"))
}

func TestExecuteDue_FalloSinRegistrar_QuedaPendienteYReservado(t *testing.T) {
	s := apptest.NewStore()
	s.PutPayment(pendingPayment("pay-a", entity.PaymentTypeToSupplier, now))
	s.FailPaymentUpdate = func(string) error { return apptest.ErrInjected }

	mover := &apptest.Mover{FailFor: map[string]error{"pay-a": errors.New("saldo insuficiente")}}
	sweep := newSweep(s, mover, &apptest.Locker{})
	res, err := sweep.ExecuteDue(context.Background(), now)
	require.NoError(t, err)

	out := outcomeOf(res, "pay-a")
	assert.Equal(t, dto.SweepOutcomeFailed, out.Outcome)
	assert.Contains(t, out.Detail, "fallo sin registrar")
	assert.Contains(t, out.Detail, "saldo insuficiente")
	assert.Equal(t, entity.PaymentStatusPending, paymentStatus(t, s, "pay-a"))

	// Con la reserva vigente no se vuelve a transferir.
	res, err = sweep.ExecuteDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, dto.SweepOutcomeSkipped, outcomeOf(res, "pay-a").Outcome)
	assert.Equal(t, 1, mover.Calls())

	// Vencida la reserva, el pago se reintenta.
	s.FailPaymentUpdate = nil
	res, err = sweep.ExecuteDue(context.Background(), now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, dto.SweepOutcomeFailed, outcomeOf(res, "pay-a").Outcome)
	assert.Equal(t, 2, mover.Calls())
	assert.Equal(t, entity.PaymentStatusFailed, paymentStatus(t, s, "pay-a"))
}

func paymentStatus(t *testing.T, s *apptest.Store, id string) entity.PaymentStatus {
	t.Helper()
	p, ok := s.Payment(id)
	require.True(t, ok)
	return p.Status
}
