package proposal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/factoring-api/internal/application/dto"
	"github.com/jhoicas/factoring-api/internal/application/ports"
	"github.com/jhoicas/factoring-api/internal/domain"
	"github.com/jhoicas/factoring-api/internal/domain/entity"
	"github.com/jhoicas/factoring-api/internal/domain/repository"
)

// Send draft → sent. Solo el inversionista que redactó la propuesta.
func (uc *UseCase) Send(ctx context.Context, actor dto.Actor, id string) (*dto.ProposalResponse, error) {
	p, invoice, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !(actor.Role == entity.RoleInvestor && actor.UserID == p.InvestorID) {
		return nil, domain.ErrForbidden
	}
	from := p.Status
	if !p.Send(uc.now()) {
		return nil, domain.NewTransitionError(entity.ProposalActionSend, string(from))
	}
	if err := uc.persist(ctx, uc.proposals, p, entity.ProposalActionSend, from, []entity.ProposalStatus{entity.ProposalStatusDraft}); err != nil {
		return nil, err
	}
	uc.notifyCompany(ctx, ports.NotificationProposalStatusChanged, invoice, p, p.Message)
	return toProposalResponse(p, invoice), nil
}

// Approve sent|pending → approved. Responde la contraparte de quien redactó las condiciones vigentes.
func (uc *UseCase) Approve(ctx context.Context, actor dto.Actor, id string, in dto.ApproveProposalRequest) (*dto.ProposalResponse, error) {
	p, invoice, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeResponder(actor, p, invoice); err != nil {
		return nil, err
	}
	from := p.Status
	if !p.Approve(actor.UserID, in.Notes, uc.now()) {
		return nil, domain.NewTransitionError(entity.ProposalActionApprove, string(from))
	}
	if err := uc.persist(ctx, uc.proposals, p, entity.ProposalActionApprove, from, entity.EditableStatuses); err != nil {
		return nil, err
	}
	uc.notifyCounterpart(ctx, actor, invoice, p, in.Notes)
	return toProposalResponse(p, invoice), nil
}

// Reject sent|pending → rejected.
func (uc *UseCase) Reject(ctx context.Context, actor dto.Actor, id string, in dto.RejectProposalRequest) (*dto.ProposalResponse, error) {
	p, invoice, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeResponder(actor, p, invoice); err != nil {
		return nil, err
	}
	from := p.Status
	if !p.Reject(actor.UserID, in.Reason, uc.now()) {
		return nil, domain.NewTransitionError(entity.ProposalActionReject, string(from))
	}
	if err := uc.persist(ctx, uc.proposals, p, entity.ProposalActionReject, from, entity.EditableStatuses); err != nil {
		return nil, err
	}
	uc.notifyCounterpart(ctx, actor, invoice, p, in.Reason)
	return toProposalResponse(p, invoice), nil
}

// Expire sent|pending → expired. Acción administrativa; el vencimiento por plazo lo hace ExpireDue.
func (uc *UseCase) Expire(ctx context.Context, actor dto.Actor, id string) (*dto.ProposalResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	p, invoice, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	from := p.Status
	if !p.MarkExpired(uc.now()) {
		return nil, domain.NewTransitionError(entity.ProposalActionExpire, string(from))
	}
	if err := uc.persist(ctx, uc.proposals, p, entity.ProposalActionExpire, from, entity.EditableStatuses); err != nil {
		return nil, err
	}
	uc.notifyInvestor(ctx, p, "")
	return toProposalResponse(p, invoice), nil
}

// CounterOffer marca la propuesta como counter_offered y crea la nueva propuesta pending
// con las condiciones recibidas, ambas escrituras en la misma transacción.
func (uc *UseCase) CounterOffer(ctx context.Context, actor dto.Actor, id string, in dto.CounterOfferRequest) (*dto.CounterOfferResponse, error) {
	p, invoice, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeResponder(actor, p, invoice); err != nil {
		return nil, err
	}
	terms := entity.CounterTerms{
		AdvancePercentage:    in.AdvancePercentage,
		FactoringCommission:  in.FactoringCommission,
		PaymentTerms:         in.PaymentTerms,
		ConfirmingCommission: in.ConfirmingCommission,
		EarlyPaymentDiscount: in.EarlyPaymentDiscount,
	}
	if err := validateTerms(p.OperationType, terms); err != nil {
		return nil, err
	}

	now := uc.now()
	from := p.Status
	child, ok := p.CounterOffer(uuid.New().String(), terms, in.Response, actor.UserID, now)
	if !ok {
		return nil, domain.NewTransitionError(entity.ProposalActionCounterOffer, string(from))
	}
	expires := now.AddDate(0, 0, uc.cfg.DefaultExpiryDays)
	child.ExpiresAt = &expires

	err = uc.txRunner.RunProposals(ctx, func(repo repository.ProposalRepository) error {
		if err := uc.persist(ctx, repo, p, entity.ProposalActionCounterOffer, from, entity.EditableStatuses); err != nil {
			return err
		}
		if err := repo.Create(ctx, child); err != nil {
			return fmt.Errorf("crear contraoferta: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("proposal_id", p.ID).Str("counter_id", child.ID).Str("actor_id", actor.UserID).Msg("contraoferta registrada")

	uc.notifyCounterpart(ctx, actor, invoice, p, in.Response)
	uc.notifyCounterpart(ctx, actor, invoice, child, in.Response)
	return &dto.CounterOfferResponse{
		Parent:  *toProposalResponse(p, invoice),
		Counter: *toProposalResponse(child, invoice),
	}, nil
}

// ExpireDue vence las propuestas sent/pending cuyo plazo ya pasó. Devuelve los ids vencidos.
// Una propuesta que cambió de estado entre la consulta y la escritura se omite.
func (uc *UseCase) ExpireDue(ctx context.Context, now time.Time) ([]string, error) {
	due, err := uc.proposals.ListExpirable(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("listar propuestas vencidas: %w", err)
	}
	expired := make([]string, 0, len(due))
	for _, p := range due {
		from := p.Status
		if !p.IsExpiredAt(now) || !p.MarkExpired(now) {
			continue
		}
		ok, err := uc.proposals.UpdateTransition(ctx, p, []entity.ProposalStatus{from})
		if err != nil {
			return expired, fmt.Errorf("vencer propuesta %s: %w", p.ID, err)
		}
		if !ok {
			uc.log.Debug().Str("proposal_id", p.ID).Msg("propuesta cambió de estado antes de vencerla")
			continue
		}
		expired = append(expired, p.ID)
		uc.notifyInvestor(ctx, p, "")
	}
	uc.log.Info().Int("expired", len(expired)).Msg("vencimiento de propuestas")
	return expired, nil
}

// persist escribe la transición solo si el estado almacenado sigue en expected;
// si otro proceso se adelantó, reporta la guarda con el estado leído.
func (uc *UseCase) persist(ctx context.Context, repo repository.ProposalRepository, p *entity.InvestmentProposal, action string, from entity.ProposalStatus, expected []entity.ProposalStatus) error {
	ok, err := repo.UpdateTransition(ctx, p, expected)
	if err != nil {
		return fmt.Errorf("actualizar propuesta %s: %w", p.ID, err)
	}
	if !ok {
		return domain.NewTransitionError(action, string(from))
	}
	uc.log.Info().Str("proposal_id", p.ID).Str("action", action).Str("from", string(from)).Str("to", string(p.Status)).Msg("transición de propuesta")
	return nil
}
