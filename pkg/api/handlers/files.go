package handlers

import (
	"errors"
	"net/http"

	"github.com/abiiranathan/lexicon-sub000/internal/logger"
	"github.com/abiiranathan/lexicon-sub000/pkg/cache"
	"github.com/abiiranathan/lexicon-sub000/pkg/store/postgres"
)

const (
	defaultListLimit = 25
	maxListLimit     = 100
)

type listResponse struct {
	Results    []postgres.File `json:"results"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalCount int64           `json:"total_count"`
	HasNext    bool            `json:"has_next"`
	HasPrev    bool            `json:"has_prev"`
	TotalPages int64           `json:"total_pages"`
}

// ListFiles serves GET /api/list-files.
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := queryInt(r, "limit", defaultListLimit)
	if limit < 1 {
		limit = 1
	} else if limit > maxListLimit {
		limit = maxListLimit
	}
	name := r.URL.Query().Get("name")

	key := cache.ListKey(page, limit, name)
	if v := h.cache.Get(key); v != nil {
		writeJSONBytes(w, http.StatusOK, v.Bytes())
		v.Release()
		return
	}

	files, total, err := h.store.ListFiles(r.Context(), page, limit, name)
	if err != nil {
		logger.ErrorCtx(r.Context(), "file listing failed", logger.Err(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)
	if totalPages < 1 {
		totalPages = 1
	}
	resp := listResponse{
		Results:    files,
		Page:       page,
		Limit:      limit,
		TotalCount: total,
		HasNext:    int64(page) < totalPages,
		HasPrev:    page > 1,
		TotalPages: totalPages,
	}

	body, err := marshalJSON(resp)
	if err != nil {
		logger.ErrorCtx(r.Context(), "listing encoding failed", logger.Err(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.cache.Set(key, body, 0)
	writeJSONBytes(w, http.StatusOK, body)
}

// GetFile serves GET /api/list-files/{file_id}.
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	fileID, err := pathInt64(r, "file_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := cache.MakeKey(fileID, -1)
	if v := h.cache.Get(key); v != nil {
		writeJSONBytes(w, http.StatusOK, v.Bytes())
		v.Release()
		return
	}

	file, err := h.store.GetFile(r.Context(), fileID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		logger.ErrorCtx(r.Context(), "file lookup failed",
			logger.FileID(fileID), logger.Err(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	body, err := marshalJSON(file)
	if err != nil {
		logger.ErrorCtx(r.Context(), "file encoding failed", logger.Err(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.cache.Set(key, body, 0)
	writeJSONBytes(w, http.StatusOK, body)
}
