package handler

import (
	"errors"
	"log/slog"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/JuNicky/Rabobank-Technical-Assessment/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// writeJSON sends a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write JSON response", "error", err)
	}
}

// writeError sends a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// readJSON decodes the request body into the given destination.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dst)
}

// writeServiceError maps a service error onto a status code. Conflicts are
// answered with conflictStatus.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, conflictStatus int) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, conflictStatus, err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// writeReadError maps a service error from a read-only call. A conflict
// from a read is reported as an internal error.
func writeReadError(w http.ResponseWriter, r *http.Request, err error) {
	writeServiceError(w, r, err, http.StatusInternalServerError)
}
