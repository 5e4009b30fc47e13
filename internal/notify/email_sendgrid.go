package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/aziwar/dr-islam-website-sub002/pkg/logging"
)

// SendGridProvider sends emails via the SendGrid API.
type SendGridProvider struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// NewSendGridProvider creates a SendGrid email provider, or nil when no API
// key is configured.
func NewSendGridProvider(cfg SendGridConfig, logger *logging.Logger) *SendGridProvider {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SendGridProvider{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

// Name identifies the provider in delivery results.
func (p *SendGridProvider) Name() string { return "sendgrid" }

// Send delivers one message through SendGrid.
func (p *SendGridProvider) Send(ctx context.Context, msg EmailMessage) (DeliveryResult, error) {
	result := DeliveryResult{Provider: p.Name()}
	if p.client == nil {
		result.Error = "sendgrid client not configured"
		return result, fmt.Errorf("notify: sendgrid client not configured")
	}

	from := mail.NewEmail(p.fromName, p.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)

	var message *mail.SGMailV3
	if msg.HTML != "" {
		message = mail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)
	} else {
		message = mail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.Text)
	}

	response, err := p.client.SendWithContext(ctx, message)
	if err != nil {
		p.logger.Error("sendgrid send failed", "error", err, "to", msg.To)
		result.Error = err.Error()
		return result, fmt.Errorf("notify: sendgrid send failed: %w", err)
	}

	result.StatusCode = response.StatusCode
	if response.StatusCode >= 400 {
		p.logger.Error("sendgrid returned error status", "status", response.StatusCode, "body", truncate(response.Body, 200), "to", msg.To)
		result.Error = truncate(response.Body, 200)
		return result, fmt.Errorf("notify: sendgrid returned status %d", response.StatusCode)
	}

	result.Success = true
	p.logger.Info("email sent via sendgrid", "to", msg.To, "subject", msg.Subject, "status", response.StatusCode)
	return result, nil
}

// Ensure interface compliance
var _ Provider = (*SendGridProvider)(nil)
