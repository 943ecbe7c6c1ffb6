// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks gateway HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_request_duration_seconds",
			Help:    "Gateway HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total gateway HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_requests_total",
			Help: "Total gateway HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// GateRedirectsTotal counts unauthenticated requests bounced to login.
	GateRedirectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_gate_redirects_total",
			Help: "Requests redirected to login by the session gate",
		},
		[]string{"path"},
	)

	// UpstreamRequestDuration tracks calls to the Signalry API.
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_upstream_request_duration_seconds",
			Help:    "Upstream Signalry API call duration",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation", "status"},
	)

	// SignalLoadsTotal counts signal list loads by filter and outcome.
	SignalLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_signal_loads_total",
			Help: "Signal list loads",
		},
		[]string{"filter", "status"},
	)

	// ReviewActionsTotal counts approve/discard/run actions.
	ReviewActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_review_actions_total",
			Help: "Review actions issued from the console",
		},
		[]string{"action", "status"},
	)

	// ChatSendsTotal counts chat sends by how the message settled.
	ChatSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_chat_sends_total",
			Help: "Chat messages sent, by final phase",
		},
		[]string{"phase"},
	)

	// ActiveSessions gauges view sessions currently held in memory.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "console_active_sessions",
			Help: "View sessions currently held by the gateway",
		},
	)

	// LoginAttemptsTotal counts login attempts by result.
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_login_attempts_total",
			Help: "Login attempts against the invite-code flow",
		},
		[]string{"result"},
	)
)

// RecordRequest records metrics for a gateway HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordUpstream records one call against the Signalry API.
func RecordUpstream(operation, status string, duration float64) {
	UpstreamRequestDuration.WithLabelValues(operation, status).Observe(duration)
}
