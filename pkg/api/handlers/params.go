package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// pathInt64 parses a positive integer path parameter.
func pathInt64(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}

// pathInt parses a positive integer path parameter as an int.
func pathInt(r *http.Request, name string) (int, error) {
	v, err := pathInt64(r, name)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// queryInt parses an optional integer query parameter, falling back to def
// when the parameter is absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// queryBool parses an optional boolean query parameter.
func queryBool(r *http.Request, name string, def bool) bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}
