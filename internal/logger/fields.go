package logger

import (
	"log/slog"
)

// Standard field keys for structured logging. Use these consistently across
// the server and the indexer so logs stay greppable and queryable.
const (
	// Request correlation
	KeyRequestID = "request_id"
	KeyClientIP  = "client_ip"
	KeyMethod    = "method"
	KeyRoute     = "route"
	KeyStatus    = "status"
	KeyDuration  = "duration_ms"

	// Documents and pages
	KeyFileID   = "file_id"
	KeyPageNum  = "page_num"
	KeyNumPages = "num_pages"
	KeyPath     = "path"
	KeyName     = "name"

	// Search and caching
	KeyQuery    = "query"
	KeyCacheKey = "cache_key"
	KeyCacheHit = "cache_hit"
	KeyResults  = "results"

	// Ingestion
	KeyRunID   = "run_id"
	KeyRoot    = "root"
	KeyWorkers = "workers"
	KeyFiles   = "files"
	KeyPages   = "pages"
	KeySkipped = "skipped"

	// Errors
	KeyError = "error"
)

// ============================================================================
// Typed field constructors
// ============================================================================

// FileID creates a file_id field.
func FileID(id int64) slog.Attr {
	return slog.Int64(KeyFileID, id)
}

// PageNum creates a page_num field (1-based).
func PageNum(n int) slog.Attr {
	return slog.Int(KeyPageNum, n)
}

// NumPages creates a num_pages field.
func NumPages(n int) slog.Attr {
	return slog.Int(KeyNumPages, n)
}

// Path creates a path field.
func Path(path string) slog.Attr {
	return slog.String(KeyPath, path)
}

// Query creates a query field.
func Query(q string) slog.Attr {
	return slog.String(KeyQuery, q)
}

// CacheKey creates a cache_key field.
func CacheKey(key string) slog.Attr {
	return slog.String(KeyCacheKey, key)
}

// Err creates an error field. Returns an empty attr for nil errors.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Status creates an HTTP status field.
func Status(code int) slog.Attr {
	return slog.Int(KeyStatus, code)
}
