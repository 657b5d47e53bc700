package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/abiiranathan/lexicon-sub000/pkg/api/handlers"
	"github.com/abiiranathan/lexicon-sub000/pkg/metrics"
)

// NewRouter assembles the middleware chain and the route table.
//
// Middleware order matters: the request id must exist before the logger
// runs, and recovery has to sit inside the logger so panics still produce a
// completion line.
func NewRouter(h *handlers.Handler, m *metrics.HTTPMetrics) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger)
	r.Use(httpMetricsMiddleware(m))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", h.Search)
		r.Get("/list-files", h.ListFiles)
		r.Get("/list-files/{file_id}", h.GetFile)
		r.Get("/file/{file_id}/page/{page_num}", h.GetPage)
		r.Get("/file/{file_id}/render-page/{page_num}", h.RenderPage)
	})

	r.Get("/health", h.Health)
	r.Handle("/metrics", metrics.Handler())

	return r
}
