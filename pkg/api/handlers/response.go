package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/abiiranathan/lexicon-sub000/internal/logger"
)

const contentTypeJSON = "application/json"

// marshalJSON serialises v for caching and writing. Encoding happens before
// any byte reaches the client so a failure can still become a clean 500.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeJSONBytes writes an already serialised JSON body.
func writeJSONBytes(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logger.Debug("response write failed", logger.Err(err))
	}
}

// writeJSON serialises v and writes it with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := marshalJSON(v)
	if err != nil {
		logger.Error("response encoding failed", logger.Err(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSONBytes(w, status, body)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error body with the given status.
func writeError(w http.ResponseWriter, status int, msg string) {
	body, err := marshalJSON(errorResponse{Error: msg})
	if err != nil {
		http.Error(w, msg, status)
		return
	}
	writeJSONBytes(w, status, body)
}
