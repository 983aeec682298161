package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/HouseOfSounds/VitaeEMR/internal/records"
	"github.com/HouseOfSounds/VitaeEMR/internal/session"
)

type ErrorResponse struct {
	Error   string       `json:"error"`
	Details string       `json:"details,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// handleError maps service errors to HTTP responses. Unexpected errors are
// logged with the request id and reported without internals.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Details: verr.Error(),
			Fields:  verr.Fields,
		})
	case errors.Is(err, records.ErrInvalidReference):
		writeError(w, http.StatusBadRequest, "invalid_reference", err.Error())
	case errors.Is(err, records.ErrUnauthenticated),
		errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusUnauthorized, "unauthorized", "login required")
	case errors.Is(err, records.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, records.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, records.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, records.ErrClinicalNoteNotFound):
		writeError(w, http.StatusNotFound, "clinical_note_not_found", err.Error())
	case errors.Is(err, records.ErrPrescriptionNotFound):
		writeError(w, http.StatusNotFound, "prescription_not_found", err.Error())
	case errors.Is(err, records.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, records.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "duplicate_email", err.Error())
	case errors.Is(err, records.ErrHasDependents):
		writeError(w, http.StatusConflict, "has_dependents", err.Error())
	default:
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Str("request_id", GetRequestID(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
	}
}
