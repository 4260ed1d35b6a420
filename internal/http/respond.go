package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"financas/internal/core"
)

type errorBody struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorBody{Error: msg})
}

// respondServiceError maps domain errors onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, core.ErrNoSession):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, core.ErrForbidden), errors.Is(err, core.ErrProtectedUser):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, core.ErrUserNotFound),
		errors.Is(err, core.ErrTransactionNotFound),
		errors.Is(err, core.ErrGoalNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrUsernameTaken):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrEmptyUsername),
		errors.Is(err, core.ErrEmptyGoalName):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON parses the request body into v, limiting its size.
func decodeJSON(r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
