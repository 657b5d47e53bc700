package handlers

import (
	"errors"
	"net/http"

	"github.com/abiiranathan/lexicon-sub000/internal/logger"
	"github.com/abiiranathan/lexicon-sub000/pkg/cache"
	"github.com/abiiranathan/lexicon-sub000/pkg/store/postgres"
)

// GetPage serves GET /api/file/{file_id}/page/{page_num}.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
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

	key := cache.MakeKey(fileID, pageNum)
	if v := h.cache.Get(key); v != nil {
		writeJSONBytes(w, http.StatusOK, v.Bytes())
		v.Release()
		return
	}

	text, err := h.store.GetPageText(r.Context(), fileID, pageNum)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			writeError(w, http.StatusNotFound, "page not found")
			return
		}
		logger.ErrorCtx(r.Context(), "page lookup failed",
			logger.FileID(fileID), logger.PageNum(pageNum), logger.Err(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	body, err := marshalJSON(postgres.Page{FileID: fileID, PageNum: pageNum, Text: text})
	if err != nil {
		logger.ErrorCtx(r.Context(), "page encoding failed", logger.Err(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.cache.Set(key, body, 0)
	writeJSONBytes(w, http.StatusOK, body)
}
