// Package metrics exposes Prometheus counters for authentication events and
// the /metrics handler that serves them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics contains the custom userhub metrics.
type Metrics struct {
	AuthEvents *prometheus.CounterVec
	EmailsSent *prometheus.CounterVec
	registry   *prometheus.Registry
}

// New creates a registry with Go and process collectors plus the custom metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		AuthEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "userhub_auth_events_total",
				Help: "Total number of authentication events by event and outcome",
			},
			[]string{"event", "outcome"},
		),
		EmailsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "userhub_emails_sent_total",
				Help: "Total number of outbound emails by template and outcome",
			},
			[]string{"template", "outcome"},
		),
		registry: registry,
	}
	registry.MustRegister(m.AuthEvents, m.EmailsSent)
	return m
}

// AuthEvent records one authentication event. Safe on a nil receiver.
func (m *Metrics) AuthEvent(event string, err error) {
	if m == nil {
		return
	}
	m.AuthEvents.WithLabelValues(event, outcome(err)).Inc()
}

// EmailSent records one delivery attempt. Safe on a nil receiver.
func (m *Metrics) EmailSent(template string, err error) {
	if m == nil {
		return
	}
	m.EmailsSent.WithLabelValues(template, outcome(err)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
