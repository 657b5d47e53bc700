package api

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/abiiranathan/lexicon-sub000/internal/logger"
	"github.com/abiiranathan/lexicon-sub000/pkg/metrics"
)

// requestLogger attaches a log context to every request and emits one
// structured line per response.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}

		lc := logger.NewLogContext(ip).WithRequest(r.Method, r.URL.Path)
		lc.RequestID = chimw.GetReqID(r.Context())
		ctx := logger.WithContext(r.Context(), lc)

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		logger.InfoCtx(ctx, "request completed",
			logger.Status(ww.Status()),
			slog.Float64(logger.KeyDuration, lc.DurationMs()),
		)
	})
}

// httpMetricsMiddleware records request counts and latencies per matched
// route pattern. When metrics are disabled this is pure overhead-free
// passthrough apart from the response writer wrap.
func httpMetricsMiddleware(m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveRequest(route, r.Method, ww.Status(), time.Since(start))
		})
	}
}
