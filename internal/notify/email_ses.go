package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/aziwar/dr-islam-website-sub002/pkg/logging"
)

// SESProvider sends emails via AWS SES.
type SESProvider struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	FromEmail string
	FromName  string
}

// NewSESProvider creates an AWS SES email provider, or nil when no client
// is supplied.
func NewSESProvider(client *sesv2.Client, cfg SESConfig, logger *logging.Logger) *SESProvider {
	if client == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SESProvider{
		client:    client,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

// Name identifies the provider in delivery results.
func (p *SESProvider) Name() string { return "ses" }

// Send delivers one message through AWS SES.
func (p *SESProvider) Send(ctx context.Context, msg EmailMessage) (DeliveryResult, error) {
	result := DeliveryResult{Provider: p.Name()}
	if p.client == nil {
		result.Error = "SES client not configured"
		return result, fmt.Errorf("notify: SES client not configured")
	}

	fromAddress := fmt.Sprintf("%s <%s>", p.fromName, p.fromEmail)

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(msg.Subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{},
			},
		},
	}

	if msg.Text != "" {
		input.Content.Simple.Body.Text = &types.Content{
			Data:    aws.String(msg.Text),
			Charset: aws.String("UTF-8"),
		}
	}
	if msg.HTML != "" {
		input.Content.Simple.Body.Html = &types.Content{
			Data:    aws.String(msg.HTML),
			Charset: aws.String("UTF-8"),
		}
	}

	output, err := p.client.SendEmail(ctx, input)
	if err != nil {
		p.logger.Error("SES send failed", "error", err, "to", msg.To)
		result.Error = truncate(err.Error(), 200)
		return result, fmt.Errorf("notify: SES send failed: %w", err)
	}

	result.Success = true
	result.StatusCode = http.StatusOK
	p.logger.Info("email sent via SES", "to", msg.To, "subject", msg.Subject, "message_id", aws.ToString(output.MessageId))
	return result, nil
}

// Ensure interface compliance
var _ Provider = (*SESProvider)(nil)
