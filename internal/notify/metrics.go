package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks email delivery outcomes per provider.
type Metrics struct {
	sendLatency prometheus.Histogram
	sentCount   *prometheus.CounterVec
	errorCount  *prometheus.CounterVec
}

// NewMetrics registers delivery metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		sendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "contact_email_send_duration_seconds",
			Help:    "Time taken to send emails",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		}),
		sentCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_emails_sent_total",
			Help: "Total number of emails sent, by provider",
		}, []string{"provider"}),
		errorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_email_errors_total",
			Help: "Total number of email sending errors, by provider",
		}, []string{"provider"}),
	}
	reg.MustRegister(m.sendLatency, m.sentCount, m.errorCount)
	return m
}

func (m *Metrics) observe(provider string, d time.Duration, success bool) {
	if m == nil {
		return
	}
	m.sendLatency.Observe(d.Seconds())
	if success {
		m.sentCount.WithLabelValues(provider).Inc()
	} else {
		m.errorCount.WithLabelValues(provider).Inc()
	}
}
