package api

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{OK: false, Error: msg})
}

// writeInternalError sends a 500. In a production-like environment the
// underlying error text is replaced with a generic message so internal
// detail never reaches a caller.
func (a *API) writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, a.sanitizeError(err))
}

func (a *API) sanitizeError(err error) string {
	if a.production {
		return "internal server error"
	}
	return err.Error()
}

// decodeJSON reads a size-limited JSON body into T. On failure it writes
// a 400 response and returns ok=false.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request, maxBytes int64) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return v, false
	}
	return v, true
}
