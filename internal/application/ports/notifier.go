package ports

import (
	"context"

	"github.com/jhoicas/factoring-api/internal/domain/entity"
)

// NotificationKind evento del flujo de propuestas que se notifica.
type NotificationKind string

const (
	NotificationProposalCreated       NotificationKind = "proposal_created"
	NotificationProposalStatusChanged NotificationKind = "proposal_status_changed"
)

// Recipient destinatario de la notificación.
type Recipient struct {
	UserID string
	Email  string
	Name   string
}

// NotificationEvent lleva una copia de la propuesta tal como quedó tras el evento.
type NotificationEvent struct {
	Kind      NotificationKind
	Recipient Recipient
	Proposal  entity.InvestmentProposal
	Status    entity.ProposalStatus
	Message   string // opcional: notas, motivo de rechazo o respuesta de la contraoferta
}

// Notifier puerto de salida para notificaciones (email, in-app, ...).
// El canal de entrega es asunto del adaptador.
type Notifier interface {
	Notify(ctx context.Context, ev NotificationEvent) error
}
