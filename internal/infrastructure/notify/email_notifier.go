package notify

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/jhoicas/factoring-api/internal/application/ports"
	"github.com/jhoicas/factoring-api/internal/domain/entity"
	"github.com/jhoicas/factoring-api/pkg/config"
	"gopkg.in/gomail.v2"
)

var _ ports.Notifier = (*EmailNotifier)(nil)

// Dialer lo que el notificador necesita de gomail.Dialer; en tests se reemplaza.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier envía las notificaciones de propuestas por SMTP.
type EmailNotifier struct {
	dialer Dialer
	from   string
}

// NewEmailNotifier construye el adaptador desde la configuración SMTP.
func NewEmailNotifier(cfg config.MailConfig) *EmailNotifier {
	return NewEmailNotifierWithDialer(gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password), cfg.From)
}

// NewEmailNotifierWithDialer permite inyectar el dialer.
func NewEmailNotifierWithDialer(d Dialer, from string) *EmailNotifier {
	return &EmailNotifier{dialer: d, from: from}
}

var bodyTmpl = template.Must(template.New("proposal").Parse(`<p>Hola {{.Name}},</p>
<p>{{.Headline}}</p>
<ul>
  <li>Propuesta: {{.ProposalID}}</li>
  <li>Factura: {{.InvoiceID}}</li>
  <li>Operación: {{.OperationType}}</li>
  <li>Estado: {{.Status}}</li>
</ul>
{{if .Message}}<p>Mensaje: {{.Message}}</p>{{end}}`))

type bodyData struct {
	Name          string
	Headline      string
	ProposalID    string
	InvoiceID     string
	OperationType string
	Status        string
	Message       string
}

// Notify arma el correo y lo envía. Sin email de destino no hace nada.
func (n *EmailNotifier) Notify(ctx context.Context, ev ports.NotificationEvent) error {
	if ev.Recipient.Email == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	subject, headline := subjectFor(ev)
	var body strings.Builder
	err := bodyTmpl.Execute(&body, bodyData{
		Name:          ev.Recipient.Name,
		Headline:      headline,
		ProposalID:    ev.Proposal.ID,
		InvoiceID:     ev.Proposal.InvoiceID,
		OperationType: string(ev.Proposal.OperationType),
		Status:        entity.StatusDisplayName(ev.Status),
		Message:       ev.Message,
	})
	if err != nil {
		return fmt.Errorf("notify: render: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", ev.Recipient.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body.String())

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("notify: smtp: %w", err)
	}
	return nil
}

func subjectFor(ev ports.NotificationEvent) (subject, headline string) {
	label := entity.StatusDisplayName(ev.Status)
	if ev.Kind == ports.NotificationProposalCreated {
		return "Nueva propuesta de inversión", "Un inversionista registró una propuesta sobre su factura."
	}
	return "Propuesta " + strings.ToLower(label), fmt.Sprintf("La propuesta cambió al estado %s.", label)
}
