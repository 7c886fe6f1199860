package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/OskariKosonen/hunajapannu/internal/blobstore"
)

// errorBody is the uniform JSON error shape. Kind distinguishes the error
// classes callers can react to: a timeout invites a retry with a shorter
// time range, an auth failure needs a configuration fix.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind, status := "internal", http.StatusInternalServerError
	switch {
	case blobstore.IsTimeout(err):
		kind, status = "timeout", http.StatusGatewayTimeout
	case errors.Is(err, blobstore.ErrAuth):
		kind, status = "auth", http.StatusBadGateway
	case errors.Is(err, blobstore.ErrNotFound):
		kind, status = "not_found", http.StatusNotFound
	}

	s.log.Warn("request failed",
		"kind", kind, "error", err, "requestID", reqID(r.Context()))
	writeJSON(w, status, errorBody{Error: kind, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
