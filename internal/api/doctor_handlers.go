package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/medtrack/clinic-queue/internal/auth"
	"github.com/medtrack/clinic-queue/internal/doctor"
)

// DoctorService is the account surface the HTTP layer consumes.
type DoctorService interface {
	Register(ctx context.Context, reg doctor.Registration) (*doctor.Profile, error)
	Login(ctx context.Context, email, password string) (string, *doctor.Profile, error)
	GetProfile(ctx context.Context, id int64) (*doctor.Profile, error)
	DeleteAccount(ctx context.Context, id int64) error
}

func registerDoctorHandler(svc DoctorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterDoctorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		p, err := svc.Register(r.Context(), doctor.Registration{
			Name:           req.Name,
			Specialization: req.Specialization,
			Email:          req.Email,
			Password:       req.Password,
			StartTime:      req.StartTime,
			EndTime:        req.EndTime,
			SlotDuration:   req.SlotDuration,
		})
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, struct {
			Message string         `json:"message"`
			Doctor  DoctorResponse `json:"doctor"`
		}{"Registered successfully! Please login.", profileResponse(p)})
	}
}

func loginDoctorHandler(svc DoctorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		token, p, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, LoginResponse{
			Token: token,
			User:  profileResponse(p),
		})
	}
}

func doctorMeHandler(svc DoctorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing_token", "authentication required")
			return
		}

		p, err := svc.GetProfile(r.Context(), claims.DoctorID)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Doctor DoctorResponse `json:"doctor"`
		}{profileResponse(p)})
	}
}

func deleteDoctorHandler(svc DoctorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing_token", "authentication required")
			return
		}

		if err := svc.DeleteAccount(r.Context(), claims.DoctorID); err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageResponse{Message: "Doctor account deleted successfully"})
	}
}
