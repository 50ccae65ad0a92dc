package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
)

// TraceHeader carries the trace ID back to the client.
const TraceHeader = "X-Request-ID"

// TraceMiddleware adds a trace ID and a trace-scoped logger to the request
// context and logs one line per completed request. It reuses chi's request
// ID when RequestID runs earlier in the chain.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx := shared.SetTraceID(r.Context(), chimw.GetReqID(r.Context()))
		traceID := shared.GetTraceID(ctx)
		ctx = logger.WithRequestID(ctx, traceID)
		log := logger.FromContext(ctx)

		w.Header().Set(TraceHeader, traceID)
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		log.Debug("request started",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(ww, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("duration", time.Since(start)))
	})
}
