package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"freelance/internal/storage"
)

const maxBodyBytes = 1 << 20

// errorResponse is the envelope for every non-2xx JSON body.
type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

// respondStorageError maps repository errors onto HTTP statuses.
func respondStorageError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	slog.Error("Storage operation failed", "error", err)
	respondError(w, http.StatusInternalServerError, "internal error")
}

// decodeJSON reads a request body into dst, rejecting oversized bodies
// and trailing garbage.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected trailing data")
	}
	return nil
}
