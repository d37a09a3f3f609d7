// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the portal counters on a private registry.
type Metrics struct {
	Registry      *prometheus.Registry
	Registrations *prometheus.CounterVec
	AdmitCards    *prometheus.CounterVec
	Logins        *prometheus.CounterVec
	Exports       prometheus.Counter
}

// New registers the portal counters plus Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "examportal",
			Name:      "registrations_total",
			Help:      "Student registrations by outcome.",
		}, []string{"outcome"}),
		AdmitCards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "examportal",
			Name:      "admit_cards_rendered_total",
			Help:      "Admit cards rendered by layout.",
		}, []string{"layout"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "examportal",
			Name:      "admin_logins_total",
			Help:      "Admin login attempts by outcome.",
		}, []string{"outcome"}),
		Exports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "examportal",
			Name:      "exports_total",
			Help:      "Spreadsheet exports served.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Registrations, m.AdmitCards, m.Logins, m.Exports,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
