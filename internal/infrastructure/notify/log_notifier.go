package notify

import (
	"context"

	"github.com/jhoicas/factoring-api/internal/application/ports"
	"github.com/jhoicas/factoring-api/pkg/logger"
)

var _ ports.Notifier = (*LogNotifier)(nil)

// LogNotifier registra las notificaciones en el log. Se usa cuando no hay SMTP configurado.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier construye el adaptador.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log.WithComponent("notify")}
}

// Notify nunca falla.
func (n *LogNotifier) Notify(_ context.Context, ev ports.NotificationEvent) error {
	n.log.Info().
		Str("kind", string(ev.Kind)).
		Str("recipient", ev.Recipient.UserID).
		Str("proposal_id", ev.Proposal.ID).
		Str("status", string(ev.Status)).
		Str("message", ev.Message).
		Msg("notificación de propuesta")
	return nil
}
