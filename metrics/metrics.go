// Package metrics holds the Prometheus instrumentation for the
// application. Counters are registered on the default registry and
// exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts inbound requests by method.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tawsky_http_requests_total",
			Help: "Total number of HTTP requests received",
		},
		[]string{"method"},
	)

	// LoginAttempts counts login attempts by outcome ("success" or
	// "failure").
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tawsky_login_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"outcome"},
	)

	// Uploads counts admin content uploads by kind and outcome.
	Uploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tawsky_uploads_total",
			Help: "Total number of admin content uploads",
		},
		[]string{"kind", "outcome"},
	)

	// HistoryWrites counts watch/read progress upserts.
	HistoryWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tawsky_history_writes_total",
			Help: "Total number of watch/read history upserts",
		},
		[]string{"kind"},
	)
)
