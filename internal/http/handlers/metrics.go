package handlers

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ContactMetrics counts contact submissions by pipeline outcome.
type ContactMetrics struct {
	submissions *prometheus.CounterVec
}

// NewContactMetrics registers submission metrics on the given registerer.
func NewContactMetrics(reg prometheus.Registerer) *ContactMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &ContactMetrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Contact form submissions by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.submissions)
	return m
}
