package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/driveguard/driveguard/internal/instrumentation"
)

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// WithInstrumentation wraps a handler with per-request structured logging
// and HTTP metrics. The registered route pattern is used as the metrics
// path label to keep cardinality bounded.
func WithInstrumentation(next http.Handler, logger *slog.Logger, metrics *instrumentation.Metrics) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		metrics.IncrementInflightRequests(r.Context())
		defer metrics.DecrementInflightRequests(r.Context())

		next.ServeHTTP(rec, r)

		path := r.Pattern
		if path == "" {
			path = r.URL.Path
		}
		duration := time.Since(start)

		metrics.RecordHTTPRequest(r.Context(), r.Method, path, rec.status, duration)

		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(r.Context(), level, "request handled",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", duration))
	})
}
