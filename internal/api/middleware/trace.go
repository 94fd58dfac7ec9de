package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/loyalty-api/internal/api/shared"
	"github.com/phrazzld/loyalty-api/internal/platform/logger"
	"github.com/phrazzld/loyalty-api/internal/redact"
)

// NewTraceMiddleware returns middleware that adds a trace ID and a logger
// tagged with it to the request context. Apply it early in the chain so
// every later handler logs with the trace ID.
func NewTraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			traceID := shared.GetTraceID(ctx)

			log := base.With(slog.String("trace_id", traceID))
			ctx = logger.WithLogger(ctx, log)

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", redact.Emails(r.URL.Path)),
				slog.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
