// Package metrics provides Prometheus instrumentation for the bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GuardRejections counts events dropped before dispatch.
	GuardRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genbot_guard_rejections_total",
			Help: "Events dropped by the flood or staleness guard",
		},
		[]string{"guard"},
	)

	// BackendRequests counts generation requests by backend and outcome.
	BackendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genbot_backend_requests_total",
			Help: "Generation requests by backend and outcome",
		},
		[]string{"backend", "status"},
	)

	// BackendDuration tracks how long a generation took end to end.
	BackendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "genbot_backend_duration_seconds",
			Help:    "Generation duration in seconds",
			Buckets: []float64{.5, 1, 2, 5, 10, 20, 30, 60, 120, 240},
		},
		[]string{"backend"},
	)

	// TokensTotal counts tokens reported by the text backend.
	TokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genbot_llm_tokens_total",
			Help: "Text backend tokens",
		},
		[]string{"model", "direction"},
	)

	// ReportsTotal counts history reports by filter kind.
	ReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genbot_history_reports_total",
			Help: "History reports produced",
		},
		[]string{"filter", "result"},
	)

	// Restarts counts supervisor restarts of the serving loop.
	Restarts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "genbot_serve_restarts_total",
			Help: "Restarts of the bot serving loop",
		},
	)
)

// RecordBackend records the outcome and duration of one generation.
func RecordBackend(backend, status string, seconds float64) {
	BackendRequests.WithLabelValues(backend, status).Inc()
	BackendDuration.WithLabelValues(backend).Observe(seconds)
}

// RecordTokens records prompt and completion token counts.
func RecordTokens(model string, prompt, completion int) {
	TokensTotal.WithLabelValues(model, "in").Add(float64(prompt))
	TokensTotal.WithLabelValues(model, "out").Add(float64(completion))
}
