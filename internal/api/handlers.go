package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/medtrack/clinic-queue/internal/booking"
)

// BookingService is the core surface the HTTP layer consumes.
type BookingService interface {
	GenerateSlots(ctx context.Context, doctorID int64, date string) (*booking.GenerateResult, error)
	BookSlot(ctx context.Context, req booking.BookingRequest) (*booking.BookingConfirmation, error)
	TrackAppointment(ctx context.Context, token string) (*booking.TrackingView, error)
	ListDoctorAppointments(ctx context.Context, doctorID int64, date string) (*booking.DoctorQueue, error)
	ListDoctors(ctx context.Context) ([]booking.Doctor, error)
	ListAvailableSlots(ctx context.Context, doctorID int64, date string) ([]booking.SlotView, error)
	CompleteAppointment(ctx context.Context, token string) (*booking.Appointment, error)
	DeleteAppointment(ctx context.Context, token string) error
}

func urlInt64(r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return v, err == nil && v > 0
}

func listDoctorsHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctors, err := svc.ListDoctors(r.Context())
		if err != nil {
			handleDomainError(w, err)
			return
		}

		resp := make([]DoctorResponse, 0, len(doctors))
		for _, d := range doctors {
			resp = append(resp, doctorResponse(d))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func generateSlotsHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GenerateSlotsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.DoctorID == 0 || req.Date == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "doctor_id and date required")
			return
		}

		res, err := svc.GenerateSlots(r.Context(), req.DoctorID, req.Date)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		if res.AlreadyGenerated {
			writeJSON(w, http.StatusOK, GenerateSlotsResponse{Message: "Slots already generated"})
			return
		}
		writeJSON(w, http.StatusOK, GenerateSlotsResponse{
			Success: true,
			Created: res.Created,
			Message: "Slots generated",
		})
	}
}

func listSlotsHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, ok := urlInt64(r, "doctor_id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a positive integer")
			return
		}

		slots, err := svc.ListAvailableSlots(r.Context(), doctorID, chi.URLParam(r, "date"))
		if err != nil {
			handleDomainError(w, err)
			return
		}

		resp := make([]SlotResponse, 0, len(slots))
		for _, s := range slots {
			resp = append(resp, SlotResponse{
				ID:          s.ID,
				Time24:      s.Time24,
				DisplayTime: s.DisplayTime,
				Date:        s.Date,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func bookSlotHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BookSlotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		conf, err := svc.BookSlot(r.Context(), booking.BookingRequest{
			DoctorID:     req.DoctorID,
			SlotID:       req.SlotID,
			PatientName:  req.PatientName,
			PatientEmail: req.PatientEmail,
			PatientPhone: req.PatientPhone,
			PatientAge:   req.PatientAge,
		})
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, BookSlotResponse{
			AppointmentID:   conf.AppointmentID,
			QueueNumber:     conf.QueueNumber,
			AppointmentTime: conf.Time,
			AppointmentDate: conf.Date,
		})
	}
}

func trackAppointmentHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.TrackAppointment(r.Context(), chi.URLParam(r, "appointment_id"))
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, TrackResponse{
			AppointmentID:   view.AppointmentID,
			PatientName:     view.PatientName,
			PatientAge:      view.PatientAge,
			Status:          string(view.Status),
			SlotTime:        view.SlotTime,
			AppointmentDate: view.Date,
			QueueNumber:     view.QueueNumber,
			PatientsAhead:   view.PatientsAhead,
			DelayMins:       view.DelayMins,
			ExpectedTime:    view.ExpectedTime,
		})
	}
}

func doctorAppointmentsHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, ok := urlInt64(r, "doctor_id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a positive integer")
			return
		}

		queue, err := svc.ListDoctorAppointments(r.Context(), doctorID, r.URL.Query().Get("target_date"))
		if err != nil {
			handleDomainError(w, err)
			return
		}

		resp := DoctorAppointmentsResponse{
			Doctor:          doctorResponse(queue.Doctor),
			WaitingList:     make([]QueueEntryResponse, 0, len(queue.Waiting)),
			AllAppointments: make([]QueueEntryResponse, 0, len(queue.All)),
			TargetDate:      queue.Date,
		}
		if queue.NowServing != nil {
			serving := queueEntryResponse(*queue.NowServing)
			resp.NowServing = &serving
		}
		for _, e := range queue.Waiting {
			resp.WaitingList = append(resp.WaitingList, queueEntryResponse(e))
		}
		for _, e := range queue.All {
			resp.AllAppointments = append(resp.AllAppointments, queueEntryResponse(e))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func completeAppointmentHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appt, err := svc.CompleteAppointment(r.Context(), chi.URLParam(r, "appointment_id"))
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Success     bool   `json:"success"`
			Appointment string `json:"appointment_id"`
			Status      string `json:"status"`
		}{true, appt.Token, string(appt.Status)})
	}
}

func deleteAppointmentHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteAppointment(r.Context(), chi.URLParam(r, "appointment_id")); err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageResponse{Message: "Appointment deleted successfully"})
	}
}
