// Package handlers implements the JSON API surface. Handler groups hold
// their dependencies in a struct built by a New* constructor; responses
// use a single error shape of {"error": msg}, extended with a fields
// list for validation failures.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"blockcms/internal/workflow"
)

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// respondError writes the API error shape.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondWorkflowError maps workflow errors onto HTTP statuses.
// Validation failures carry the itemized field list.
func respondWorkflowError(w http.ResponseWriter, err error) {
	var verr *workflow.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "Validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, workflow.ErrNotFound):
		respondError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, workflow.ErrForbidden):
		respondError(w, http.StatusForbidden, "Forbidden")
	default:
		slog.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// jsonBytes marshals v for storage or raw writes.
func jsonBytes(v any) ([]byte, error) {
	return json.Marshal(v)
}

// decodeJSON parses the request body into v. Unknown fields are ignored,
// matching the permissive clients this API serves.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
