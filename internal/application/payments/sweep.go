package payments

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/factoring-api/internal/application/dto"
	"github.com/jhoicas/factoring-api/internal/application/ports"
	"github.com/jhoicas/factoring-api/internal/domain"
	"github.com/jhoicas/factoring-api/internal/domain/entity"
	"github.com/jhoicas/factoring-api/internal/domain/repository"
	"github.com/jhoicas/factoring-api/pkg/logger"
)

// SweepLockKey clave del candado que serializa los barridos entre procesos.
const SweepLockKey = "factoring:payments:sweep"

// SweepUseCase ejecuta los pagos pendientes cuya fecha programada ya llegó.
type SweepUseCase struct {
	payments repository.PaymentRepository
	mover    ports.MoneyMover
	locker   ports.Locker
	lockTTL  time.Duration
	log      *logger.Logger
}

// NewSweepUseCase construye el caso de uso. lockTTL debe cubrir la duración de un barrido.
func NewSweepUseCase(payments repository.PaymentRepository, mover ports.MoneyMover, locker ports.Locker, lockTTL time.Duration, log *logger.Logger) *SweepUseCase {
	if log == nil {
		log = logger.Nop()
	}
	if lockTTL <= 0 {
		lockTTL = 5 * time.Minute
	}
	return &SweepUseCase{payments: payments, mover: mover, locker: locker, lockTTL: lockTTL, log: log.WithComponent("sweep")}
}

// ExecuteDue procesa cada pago vencido de forma independiente: el fallo de uno no detiene
// el barrido. Volver a ejecutarlo solo ve los pagos que siguen pendientes.
func (uc *SweepUseCase) ExecuteDue(ctx context.Context, now time.Time) (*dto.SweepResponse, error) {
	release, err := uc.locker.Acquire(ctx, SweepLockKey, uc.lockTTL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			uc.log.Warn().Err(err).Msg("no se pudo liberar el candado del barrido")
		}
	}()

	due, err := uc.payments.ListDue(ctx, now)
	if err != nil {
		return nil, err
	}
	res := &dto.SweepResponse{RunAt: now, Outcomes: make([]dto.SweepOutcome, 0, len(due))}
	for _, p := range due {
		out := uc.execute(ctx, p, now)
		switch out.Outcome {
		case dto.SweepOutcomeSuccess:
			res.Executed++
		case dto.SweepOutcomeFailed:
			res.Failed++
		}
		res.Outcomes = append(res.Outcomes, out)
	}
	res.Processed = len(res.Outcomes)
	uc.log.Info().Int("processed", res.Processed).Int("executed", res.Executed).Int("failed", res.Failed).Msg("barrido de pagos")
	return res, nil
}

func (uc *SweepUseCase) execute(ctx context.Context, p *entity.Payment, now time.Time) dto.SweepOutcome {
	out := dto.SweepOutcome{PaymentID: p.ID}

	// La reserva de la fila es la que impide transferir dos veces: el candado del barrido
	// puede ser local a cada proceso. Dura lockTTL; si el pago no se cierra, se reintenta al vencer.
	claimed, err := uc.payments.Claim(ctx, p.ID, now, uc.lockTTL)
	if err != nil {
		uc.log.Error().Err(err).Str("payment_id", p.ID).Msg("no se pudo reservar el pago")
		out.Outcome, out.Detail = dto.SweepOutcomeFailed, err.Error()
		return out
	}
	if !claimed {
		out.Outcome, out.Detail = dto.SweepOutcomeSkipped, "el pago está reservado por otro barrido"
		return out
	}

	req := ports.TransferRequest{
		IdempotencyKey: p.ID,
		PaymentType:    p.Type,
		Amount:         p.Amount,
		PayerID:        p.PayerID,
		InvoiceID:      p.InvoiceID,
	}
	if p.PayeeID != nil {
		req.PayeeID = *p.PayeeID
	} else {
		req.ExternalName = p.Metadata.SupplierName
		req.ExternalTaxID = p.Metadata.SupplierTaxID
	}

	receipt, transferErr := uc.mover.Transfer(ctx, req)
	if transferErr != nil {
		ok, err := uc.payments.MarkFailed(ctx, p.ID, transferErr.Error(), now)
		switch {
		case err != nil:
			// Sigue pending con la reserva tomada: se reintenta cuando venza.
			uc.log.Error().Err(err).AnErr("transfer_error", transferErr).Str("payment_id", p.ID).
				Msg("fallo de transferencia sin registrar; el pago sigue pendiente")
			out.Outcome, out.Detail = dto.SweepOutcomeFailed, "fallo sin registrar: "+transferErr.Error()
		case !ok:
			out.Outcome, out.Detail = dto.SweepOutcomeSkipped, "el pago ya no está pendiente"
		default:
			uc.log.Warn().Err(transferErr).Str("payment_id", p.ID).Msg("pago fallido")
			out.Outcome, out.Detail = dto.SweepOutcomeFailed, transferErr.Error()
		}
		return out
	}

	ref := ""
	if receipt != nil {
		ref = receipt.Reference
	}
	ok, err := uc.payments.MarkExecuted(ctx, p.ID, ref, now)
	switch {
	case err != nil:
		// La transferencia salió pero el pago sigue pending: al vencer la reserva se reintenta
		// con la misma clave de idempotencia.
		uc.log.Error().Err(err).Str("payment_id", p.ID).Str("reference", ref).Msg("transferencia realizada sin registrar")
		out.Outcome, out.Detail = dto.SweepOutcomeFailed, err.Error()
	case !ok:
		out.Outcome, out.Detail = dto.SweepOutcomeSkipped, "el pago ya no está pendiente"
	default:
		out.Outcome, out.Detail = dto.SweepOutcomeSuccess, ref
	}
	return out
}

// IsSweepInProgress informa si err indica que otro proceso tiene el candado.
func IsSweepInProgress(err error) bool {
	return errors.Is(err, domain.ErrSweepInProgress)
}
