package otel

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPMiddleware returns a chi-compatible middleware that creates a span per
// request. GitHub webhook event names are recorded on the span so that
// deliveries can be told apart.
func HTTPMiddleware(serviceName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, serviceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if ev := r.Header.Get("X-GitHub-Event"); ev != "" {
					return r.Method + " " + r.URL.Path + " " + ev
				}
				return r.Method + " " + r.URL.Path
			}),
		)
	}
}
