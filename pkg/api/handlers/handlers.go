// Package handlers implements the JSON and binary endpoints of the search
// API. Every read endpoint is backed by the shared response cache; cached
// entries hold fully serialised bodies so a hit is a lock, a copy and a
// write.
package handlers

import (
	"context"
	"time"

	"github.com/abiiranathan/lexicon-sub000/pkg/cache"
	"github.com/abiiranathan/lexicon-sub000/pkg/pdf"
	"github.com/abiiranathan/lexicon-sub000/pkg/store/postgres"
)

// volatileTTL is the cache lifetime for search and render responses. Both
// are invalidated implicitly by reindexing, so they stay short.
const volatileTTL = 60 * time.Second

// Store is the database surface the handlers need.
type Store interface {
	Ping(ctx context.Context) error
	GetPageText(ctx context.Context, fileID int64, pageNum int) (string, error)
	GetFile(ctx context.Context, fileID int64) (postgres.File, error)
	GetFilePath(ctx context.Context, fileID int64) (string, error)
	ListFiles(ctx context.Context, page, limit int, name string) ([]postgres.File, int64, error)
	Search(ctx context.Context, query string, fileID int64) ([]postgres.SearchRow, error)
}

// Summarizer produces an HTML answer summary for a query. Implementations
// must degrade to an empty string on failure.
type Summarizer interface {
	Summarize(ctx context.Context, query, excerpts string) string
}

// Handler carries the dependencies shared by all endpoints.
type Handler struct {
	store Store
	cache *cache.Cache
	ai    Summarizer // nil when no API key is configured

	renderPNG func(path string, index int) ([]byte, error)
	renderPDF func(path string, index int) ([]byte, error)
}

// New creates the handler set. ai may be nil to disable summaries.
func New(store Store, c *cache.Cache, ai Summarizer) *Handler {
	return &Handler{
		store:     store,
		cache:     c,
		ai:        ai,
		renderPNG: renderPNG,
		renderPDF: pdf.ExtractPagePDF,
	}
}

func renderPNG(path string, index int) ([]byte, error) {
	doc, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()
	return doc.RenderPNG(index)
}
