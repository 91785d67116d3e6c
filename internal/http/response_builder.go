package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"painel/internal/core"
	applog "painel/internal/log"
)

// Client-facing messages. The dashboard pages match on these strings.
const (
	msgInvalidAmount       = "Valor inválido"
	msgNotFound            = "ID não encontrado"
	msgConfirmationMissing = "Confirmação ausente"
	msgInvalidDate         = "Data inválida"
	msgInvalidJSON         = "JSON inválido"
)

type errorResponse struct {
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeFailure reports an unexpected storage error as {success:false}.
func writeFailure(w http.ResponseWriter, msg string) {
	failed := false
	writeJSON(w, http.StatusInternalServerError, errorResponse{Success: &failed, Error: msg})
}

// writeServiceError maps core sentinels to status codes. Anything
// unrecognised is logged and reported as "<op> failed".
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, msgInvalidAmount)
	case errors.Is(err, core.ErrConfirmationMissing):
		writeError(w, http.StatusBadRequest, msgConfirmationMissing)
	case errors.Is(err, core.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, msgInvalidDate)
	case errors.Is(err, core.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, msgNotFound)
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", applog.NewFields().
			WithOperation(op).
			WithError(err).
			ToSlice()...)
		writeFailure(w, op+" failed")
	}
}
