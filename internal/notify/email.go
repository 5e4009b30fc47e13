package notify

import (
	"context"
)

// Provider is a single outbound email capability. Implementations can be
// swapped or stacked (SendGrid, Resend, SES) without changing callers.
type Provider interface {
	Name() string
	Send(ctx context.Context, msg EmailMessage) (DeliveryResult, error)
}

// EmailMessage represents an email to be sent.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Text    string // Plain text body
	HTML    string // Optional HTML body
}

// DeliveryResult records one provider attempt for one message.
type DeliveryResult struct {
	Provider   string `json:"provider"`
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode,omitempty"`
	Error      string `json:"error,omitempty"`
}

// truncate caps provider response bodies kept for diagnostics.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
