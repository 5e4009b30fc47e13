package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aziwar/dr-islam-website-sub002/internal/contact"
	"github.com/aziwar/dr-islam-website-sub002/pkg/logging"
)

// ErrNoProviders is returned at construction when the provider list is
// empty. Missing credentials are a deployment mistake, caught at startup.
var ErrNoProviders = errors.New("notify: no email provider configured")

const defaultProviderTimeout = 10 * time.Second

// Dispatcher renders submission emails and delivers them through an ordered
// list of providers with failover.
type Dispatcher struct {
	providers   []Provider
	clinicEmail string
	timeout     time.Duration
	logger      *logging.Logger
	metrics     *Metrics
}

// DispatcherOptions configures optional dispatcher behavior.
type DispatcherOptions struct {
	Timeout time.Duration
	Logger  *logging.Logger
	Metrics *Metrics
}

// NewDispatcher creates a dispatcher over the given providers, tried in
// order.
func NewDispatcher(providers []Provider, clinicEmail string, opts DispatcherOptions) (*Dispatcher, error) {
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}
	if clinicEmail == "" {
		return nil, errors.New("notify: clinic email is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultProviderTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	return &Dispatcher{
		providers:   providers,
		clinicEmail: clinicEmail,
		timeout:     opts.Timeout,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
	}, nil
}

// Send tries each provider in order until one delivers the message. Every
// attempt is recorded; the first success short-circuits. Each provider call
// gets its own timeout so a hung provider cannot stall the request.
func (d *Dispatcher) Send(ctx context.Context, msg EmailMessage) []DeliveryResult {
	results := make([]DeliveryResult, 0, len(d.providers))
	for _, p := range d.providers {
		callCtx, cancel := context.WithTimeout(ctx, d.timeout)
		start := time.Now()
		result, err := p.Send(callCtx, msg)
		cancel()

		d.metrics.observe(p.Name(), time.Since(start), err == nil && result.Success)
		results = append(results, result)

		if err == nil && result.Success {
			return results
		}
		d.logger.Warn("email provider failed, trying next",
			"provider", p.Name(),
			"status", result.StatusCode,
			"error", result.Error,
			"to", msg.To,
		)
	}
	return results
}

// Summary reports the attempts made for one submission.
type Summary struct {
	Clinic  []DeliveryResult
	Patient []DeliveryResult
}

// ClinicDelivered reports whether any provider delivered the clinic
// notification.
func (s Summary) ClinicDelivered() bool { return anySucceeded(s.Clinic) }

// PatientDelivered reports whether the patient confirmation was attempted
// and delivered.
func (s Summary) PatientDelivered() bool { return anySucceeded(s.Patient) }

// PatientAttempted reports whether a patient confirmation was sent at all.
func (s Summary) PatientAttempted() bool { return len(s.Patient) > 0 }

// Results flattens all attempts, clinic first, for response reporting.
func (s Summary) Results() []DeliveryResult {
	out := make([]DeliveryResult, 0, len(s.Clinic)+len(s.Patient))
	out = append(out, s.Clinic...)
	out = append(out, s.Patient...)
	return out
}

func anySucceeded(results []DeliveryResult) bool {
	for _, r := range results {
		if r.Success {
			return true
		}
	}
	return false
}

// SendAll delivers the clinic notification and, when the submitter left an
// email address, a confirmation back to them. A clinic delivery failure is
// fatal: notifying the practice is the point of the whole service. A patient
// confirmation failure is reported in the summary but does not fail the
// submission.
func (d *Dispatcher) SendAll(ctx context.Context, sub contact.SanitizedSubmission) (Summary, error) {
	var summary Summary

	clinicMsg, err := buildClinicMessage(sub, d.clinicEmail)
	if err != nil {
		return summary, err
	}
	summary.Clinic = d.Send(ctx, clinicMsg)
	if !summary.ClinicDelivered() {
		return summary, fmt.Errorf("notify: clinic notification failed after %d provider(s)", len(summary.Clinic))
	}

	if sub.Email != "" {
		patientMsg, err := buildPatientMessage(sub)
		if err != nil {
			d.logger.Error("patient confirmation render failed", "error", err)
			return summary, nil
		}
		summary.Patient = d.Send(ctx, patientMsg)
		if !summary.PatientDelivered() {
			d.logger.Warn("patient confirmation failed, submission still accepted", "to", sub.Email)
		}
	}

	return summary, nil
}
