// Package metrics holds the Prometheus collectors for the session client and
// the schedule conflict detector.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "coursectl"

// Refresh outcomes.
const (
	RefreshSuccess = "success"
	RefreshFailure = "failure"
	RefreshJoined  = "joined"
	RefreshNoToken = "no_refresh_token"
)

// Offering lookup outcomes.
const (
	LookupHit         = "hit"
	LookupFetched     = "fetched"
	LookupUnavailable = "unavailable"
)

// Metrics is a set of collectors registered on one registerer. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	Requests        *prometheus.CounterVec
	Refreshes       *prometheus.CounterVec
	Replays         prometheus.Counter
	OfferingLookups *prometheus.CounterVec
	ConflictChecks  *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "requests_total",
			Help:      "Outbound API requests by method and status class.",
		}, []string{"method", "status"}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "refreshes_total",
			Help:      "Token refresh attempts by outcome. joined counts callers that waited on an in-flight refresh.",
		}, []string{"outcome"}),
		Replays: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "replays_total",
			Help:      "Requests replayed with a refreshed access token.",
		}),
		OfferingLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "schedule",
			Name:      "offering_lookups_total",
			Help:      "Offering detail lookups by outcome.",
		}, []string{"outcome"}),
		ConflictChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "schedule",
			Name:      "conflict_checks_total",
			Help:      "Schedule conflict checks by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.Requests, m.Refreshes, m.Replays, m.OfferingLookups, m.ConflictChecks)
	return m
}

func (m *Metrics) ObserveRequest(method, status string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, status).Inc()
}

func (m *Metrics) ObserveRefresh(outcome string) {
	if m == nil {
		return
	}
	m.Refreshes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveReplay() {
	if m == nil {
		return
	}
	m.Replays.Inc()
}

func (m *Metrics) ObserveLookup(outcome string) {
	if m == nil {
		return
	}
	m.OfferingLookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveConflictCheck(conflict bool) {
	if m == nil {
		return
	}
	result := "clear"
	if conflict {
		result = "conflict"
	}
	m.ConflictChecks.WithLabelValues(result).Inc()
}

// NewRegistry creates a Prometheus registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler returns an http.Handler that serves Prometheus metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
