// Package http provides the webhook receiver used by `workflow-notify serve`.
package http

import (
	"log/slog"
	"net/http"
	"time"
)

const headerGitHubEvent = "X-GitHub-Event"

// AccessLog logs one line per delivery with the GitHub event name. Rejected
// deliveries are logged at warn level and server faults at error level, so a
// misconfigured webhook secret stands out without debug logging.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		slog.Log(r.Context(), accessLevel(rec.status), "webhook delivery",
			"method", r.Method,
			"path", r.URL.Path,
			"event", r.Header.Get(headerGitHubEvent),
			"status", rec.status,
			"bytes", rec.written,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func accessLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// responseWriter records the status and body size for AccessLog.
type responseWriter struct {
	http.ResponseWriter
	status  int
	written int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += n
	return n, err
}
