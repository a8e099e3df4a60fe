package middleware

import (
	"log/slog"
	"net/http"

	"tawsky/metrics"
)

// Logging provides request logging middleware
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)
		metrics.HTTPRequests.WithLabelValues(r.Method).Inc()
		next.ServeHTTP(w, r)
	})
}
