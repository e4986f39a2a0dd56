package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestCounter counts HTTP requests by status code, method, and route
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcomp_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"status", "method", "path"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitcomp_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status", "method", "path"},
	)

	// RequestInProgress counts HTTP requests currently being processed
	RequestInProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fitcomp_http_requests_in_progress",
			Help: "Number of HTTP requests currently being processed",
		},
		[]string{"method", "path"},
	)

	// RateLimiterRejections counts login attempts rejected by the rate limiter
	RateLimiterRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitcomp_rate_limiter_rejections_total",
			Help: "Total number of requests rejected by rate limiter",
		},
	)

	// AuditEvents counts audit log rows written, by action and resource type
	AuditEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcomp_audit_events_total",
			Help: "Total number of audit log entries recorded",
		},
		[]string{"action", "resource_type"},
	)

	// PolicyDenials counts operations refused by the authorization policy
	PolicyDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcomp_policy_denials_total",
			Help: "Total number of operations denied by the authorization policy",
		},
		[]string{"operation", "reason"},
	)

	// LoginAttempts counts login attempts by outcome
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcomp_login_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)

	// SessionsPurged counts expired sessions removed by the cleanup job
	SessionsPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitcomp_sessions_purged_total",
			Help: "Total number of expired sessions deleted",
		},
	)
)
