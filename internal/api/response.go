package api

import (
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"net/http"

	"github.com/klemenv/vinoteka/internal/store"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("error encoding response: %v", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// storeError maps the store's error kinds onto HTTP statuses. Errors
// that match no known kind are treated as internal and not echoed to
// the client.
func storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrUnauthorized):
		jsonError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrValidation):
		jsonError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error("store operation failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
