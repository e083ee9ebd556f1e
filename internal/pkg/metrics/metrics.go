// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTPRequestsTotal counts requests by route template, method and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "joblink_http_requests_total",
		Help: "HTTP requests handled.",
	}, []string{"route", "method", "status"})

	// HTTPRequestDuration observes request latency by route template.
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "joblink_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// RegistrationsTotal counts finished signups by role and outcome
	// (active, pending).
	RegistrationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "joblink_registrations_total",
		Help: "Completed registrations.",
	}, []string{"role", "outcome"})

	// CodeDeliveriesTotal counts one-time code sends by result.
	CodeDeliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "joblink_code_deliveries_total",
		Help: "One-time code deliveries.",
	}, []string{"result"})

	// ModerationActionsTotal counts admin actions.
	ModerationActionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "joblink_moderation_actions_total",
		Help: "Admin moderation actions.",
	}, []string{"action"})

	// ApplicationActionsTotal counts application lifecycle events.
	ApplicationActionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "joblink_application_actions_total",
		Help: "Application lifecycle events.",
	}, []string{"action"})

	// RateLimitedTotal counts requests rejected by the auth rate limiter.
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "joblink_rate_limited_total",
		Help: "Requests rejected by the rate limiter.",
	})
)

var initOnce sync.Once

// InitMetrics registers every collector with the default registry. Calling
// it more than once is a no-op.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			RegistrationsTotal,
			CodeDeliveriesTotal,
			ModerationActionsTotal,
			ApplicationActionsTotal,
			RateLimitedTotal,
		)
	})
}
