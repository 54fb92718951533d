package proposal

import (
	"context"

	"github.com/jhoicas/factoring-api/internal/application/dto"
	"github.com/jhoicas/factoring-api/internal/application/ports"
	"github.com/jhoicas/factoring-api/internal/domain/entity"
)

// Las notificaciones nunca hacen fallar la operación: un error solo se registra.

func (uc *UseCase) notifyCompany(ctx context.Context, kind ports.NotificationKind, invoice *entity.Invoice, p *entity.InvestmentProposal, msg string) {
	if uc.notifier == nil || uc.parties == nil {
		return
	}
	owner, err := uc.parties.CompanyOwner(ctx, invoice)
	if err != nil {
		uc.log.Warn().Err(err).Str("proposal_id", p.ID).Msg("no se pudo resolver el destinatario de la empresa")
		return
	}
	uc.send(ctx, kind, owner, p, msg)
}

func (uc *UseCase) notifyInvestor(ctx context.Context, p *entity.InvestmentProposal, msg string) {
	if uc.notifier == nil || uc.parties == nil {
		return
	}
	investor, err := uc.parties.User(ctx, p.InvestorID)
	if err != nil {
		uc.log.Warn().Err(err).Str("proposal_id", p.ID).Msg("no se pudo resolver el inversionista")
		return
	}
	uc.send(ctx, ports.NotificationProposalStatusChanged, investor, p, msg)
}

// notifyCounterpart avisa a la otra parte de quien ejecutó la acción.
func (uc *UseCase) notifyCounterpart(ctx context.Context, actor dto.Actor, invoice *entity.Invoice, p *entity.InvestmentProposal, msg string) {
	if actor.Role == entity.RoleInvestor && actor.UserID == p.InvestorID {
		uc.notifyCompany(ctx, ports.NotificationProposalStatusChanged, invoice, p, msg)
		return
	}
	uc.notifyInvestor(ctx, p, msg)
}

func (uc *UseCase) send(ctx context.Context, kind ports.NotificationKind, to *entity.User, p *entity.InvestmentProposal, msg string) {
	ev := ports.NotificationEvent{
		Kind:      kind,
		Recipient: ports.Recipient{UserID: to.ID, Email: to.Email, Name: to.Name},
		Proposal:  *p,
		Status:    p.Status,
		Message:   msg,
	}
	if err := uc.notifier.Notify(ctx, ev); err != nil {
		uc.log.Warn().Err(err).Str("proposal_id", p.ID).Str("kind", string(kind)).Msg("fallo al notificar")
	}
}
