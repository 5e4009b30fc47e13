package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/resend/resend-go/v2"

	"github.com/aziwar/dr-islam-website-sub002/pkg/logging"
)

// ResendProvider sends emails via the Resend API.
type ResendProvider struct {
	client    *resend.Client
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// ResendConfig holds configuration for Resend.
type ResendConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// NewResendProvider creates a Resend email provider, or nil when no API key
// is configured.
func NewResendProvider(cfg ResendConfig, logger *logging.Logger) *ResendProvider {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ResendProvider{
		client:    resend.NewClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

// Name identifies the provider in delivery results.
func (p *ResendProvider) Name() string { return "resend" }

// Send delivers one message through Resend.
func (p *ResendProvider) Send(ctx context.Context, msg EmailMessage) (DeliveryResult, error) {
	result := DeliveryResult{Provider: p.Name()}
	if p.client == nil {
		result.Error = "resend client not configured"
		return result, fmt.Errorf("notify: resend client not configured")
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", p.fromName, p.fromEmail),
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	sent, err := p.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		p.logger.Error("resend send failed", "error", err, "to", msg.To)
		result.Error = truncate(err.Error(), 200)
		return result, fmt.Errorf("notify: resend send failed: %w", err)
	}

	result.Success = true
	result.StatusCode = http.StatusOK
	p.logger.Info("email sent via resend", "to", msg.To, "subject", msg.Subject, "message_id", sent.Id)
	return result, nil
}

// Ensure interface compliance
var _ Provider = (*ResendProvider)(nil)
