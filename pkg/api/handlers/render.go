package handlers

import (
	"errors"
	"net/http"

	"github.com/abiiranathan/lexicon-sub000/internal/logger"
	"github.com/abiiranathan/lexicon-sub000/pkg/cache"
	"github.com/abiiranathan/lexicon-sub000/pkg/store/postgres"
)

// browserCacheControl lets viewers cache rendered pages aggressively; page
// content is immutable between reindexing runs.
const browserCacheControl = "public, max-age=3600"

// RenderPage serves GET /api/file/{file_id}/render-page/{page_num}. The type
// query parameter selects PNG (default) or a standalone single-page PDF.
func (h *Handler) RenderPage(w http.ResponseWriter, r *http.Request) {
	fileID, err := pathInt64(r, "file_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pageNum, err := pathInt(r, "page_num")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	format := r.URL.Query().Get("type")
	if format == "" {
		format = "png"
	}

	var contentType string
	switch format {
	case "png":
		contentType = "image/png"
	case "pdf":
		contentType = "application/pdf"
	default:
		writeError(w, http.StatusBadRequest, "type must be png or pdf")
		return
	}

	key := cache.RenderKey(fileID, pageNum, format)
	if v := h.cache.Get(key); v != nil {
		writeBinary(w, contentType, v.Bytes())
		v.Release()
		return
	}

	path, err := h.store.GetFilePath(r.Context(), fileID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		logger.ErrorCtx(r.Context(), "file path lookup failed",
			logger.FileID(fileID), logger.Err(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	render := h.renderPNG
	if format == "pdf" {
		render = h.renderPDF
	}
	body, err := render(path, pageNum-1)
	if err != nil {
		logger.ErrorCtx(r.Context(), "page rendering failed",
			logger.FileID(fileID), logger.PageNum(pageNum),
			logger.Path(path), logger.Err(err))
		writeError(w, http.StatusInternalServerError, "failed to render page")
		return
	}

	h.cache.Set(key, body, volatileTTL)
	writeBinary(w, contentType, body)
}

func writeBinary(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", browserCacheControl)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logger.Debug("response write failed", logger.Err(err))
	}
}
