package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/medtrack/clinic-queue/internal/booking"
	"github.com/medtrack/clinic-queue/internal/doctor"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// handleDomainError maps domain errors onto HTTP statuses: validation 400,
// bad credentials 401, missing records 404, lost races and duplicates 409,
// everything else 500.
func handleDomainError(w http.ResponseWriter, err error) {
	var verr *booking.ValidationError

	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "invalid_request", verr.Msg)
	case errors.Is(err, doctor.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, booking.ErrDoctorNotFound),
		errors.Is(err, doctor.ErrNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
	case errors.Is(err, booking.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, booking.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, "slot_unavailable", err.Error())
	case errors.Is(err, doctor.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email_taken", err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "something went wrong")
	}
}
