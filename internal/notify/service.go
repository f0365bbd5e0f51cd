package notify

import (
	"context"
	"fmt"

	"github.com/studioleads/leadcapture/internal/leads"
	"github.com/studioleads/leadcapture/pkg/logging"
)

// LeadNotifier emails the site owner after each new lead. It runs as a
// post-insert hook; failures are the caller's to log, never the visitor's.
type LeadNotifier struct {
	email  EmailSender
	to     string
	toName string
	logger *logging.Logger
}

// NewLeadNotifier creates the owner notification hook. Returns nil when no
// sender or recipient is configured, which callers treat as disabled.
func NewLeadNotifier(email EmailSender, to, toName string, logger *logging.Logger) *LeadNotifier {
	if email == nil || to == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LeadNotifier{email: email, to: to, toName: toName, logger: logger}
}

// LeadCreated implements leads.Hook.
func (n *LeadNotifier) LeadCreated(ctx context.Context, lead *leads.Lead, _ *leads.CreateLeadRequest) error {
	message := lead.Message
	if message == "" {
		message = "(sem mensagem)"
	}
	campaign := lead.Campaign
	if campaign == "" {
		campaign = "-"
	}

	msg := EmailMessage{
		To:      n.to,
		ToName:  n.toName,
		Subject: fmt.Sprintf("Novo lead: %s", lead.Name),
		Body: fmt.Sprintf(`Um novo lead chegou pela landing page.

Nome: %s
E-mail: %s
WhatsApp: %s
Mensagem: %s

Origem: %s
Campanha: %s
Recebido em: %s`,
			lead.Name, lead.Email, leadPhoneDisplay(lead), message,
			lead.Source, campaign,
			lead.CreatedAt.Format("02/01/2006 15:04")),
	}
	if err := n.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: lead email: %w", err)
	}
	n.logger.Info("lead notification sent", "lead_id", lead.ID, "to", n.to)
	return nil
}

func leadPhoneDisplay(lead *leads.Lead) string {
	if lead.Phone == "" {
		return "-"
	}
	return lead.Phone
}

var _ leads.Hook = (*LeadNotifier)(nil)
