package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/abiiranathan/lexicon-sub000/internal/logger"
	"github.com/abiiranathan/lexicon-sub000/pkg/ai"
	"github.com/abiiranathan/lexicon-sub000/pkg/cache"
)

type searchResult struct {
	FileID   int64  `json:"file_id"`
	FileName string `json:"file_name"`
	PageNum  int    `json:"page_num"`
	NumPages int    `json:"num_pages"`
	Snippet  string `json:"snippet"`
}

type searchResponse struct {
	Results   []searchResult `json:"results"`
	Count     int            `json:"count"`
	Query     string         `json:"query"`
	AISummary *string        `json:"ai_summary"`
}

// Search serves GET /api/search.
//
// The cache key covers the query and the file filter but not the ai_enabled
// flag: once any request has paid for a summary, every caller gets it for
// free until the entry expires.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing required parameter: q")
		return
	}

	var fileID int64
	if raw := r.URL.Query().Get("file_id"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "invalid file_id")
			return
		}
		fileID = v
	}
	aiEnabled := queryBool(r, "ai_enabled", true)

	key := cache.SearchKey(query, fileID)
	if v := h.cache.Get(key); v != nil {
		writeJSONBytes(w, http.StatusOK, v.Bytes())
		v.Release()
		return
	}

	rows, err := h.store.Search(r.Context(), query, fileID)
	if err != nil {
		logger.ErrorCtx(r.Context(), "search failed",
			logger.Query(query), logger.Err(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	results := make([]searchResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, searchResult{
			FileID:   row.FileID,
			FileName: row.FileName,
			PageNum:  row.PageNum,
			NumPages: row.NumPages,
			Snippet:  row.Snippet,
		})
	}

	// Summaries only make sense for corpus-wide queries with context.
	var summary *string
	if aiEnabled && fileID == 0 && h.ai != nil {
		if excerpts := ai.BuildContext(rows); excerpts != "" {
			if s := h.ai.Summarize(r.Context(), query, excerpts); s != "" {
				summary = &s
			}
		}
	}

	logger.InfoCtx(r.Context(), "search executed",
		logger.Query(query),
		logger.FileID(fileID),
		slog.Int(logger.KeyResults, len(results)),
		slog.Bool("summarized", summary != nil))

	body, err := marshalJSON(searchResponse{
		Results:   results,
		Count:     len(results),
		Query:     query,
		AISummary: summary,
	})
	if err != nil {
		logger.ErrorCtx(r.Context(), "search encoding failed", logger.Err(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.cache.Set(key, body, volatileTTL)
	writeJSONBytes(w, http.StatusOK, body)
}
