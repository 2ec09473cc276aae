// Package metrics holds the Prometheus collectors shared by handlers, services and jobs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "arena"

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	JoinAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "join_attempts_total",
		Help:      "Tournament join attempts by outcome and the step that decided it.",
	}, []string{"outcome", "step"})

	PaymentRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_requests_total",
		Help:      "Payment requests by type and resulting status.",
	}, []string{"type", "status"})

	Spins = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "spins_total",
		Help:      "Completed spin wheel draws.",
	})

	OccupancyCorrections = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "occupancy_corrections_total",
		Help:      "Tournaments whose current_players was rewritten by the reconciler.",
	})

	RateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the per-user rate limiter.",
	}, []string{"route"})
)

// NewRegistry returns a registry with the arena collectors plus the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HTTPRequests,
		HTTPDuration,
		JoinAttempts,
		PaymentRequests,
		Spins,
		OccupancyCorrections,
		RateLimited,
	)
	return reg
}
