package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medtrack/clinic-queue/internal/auth"
	"github.com/medtrack/clinic-queue/internal/booking"
	"github.com/medtrack/clinic-queue/internal/doctor"
)

type stubBooking struct {
	generateFn func(ctx context.Context, doctorID int64, date string) (*booking.GenerateResult, error)
	bookFn     func(ctx context.Context, req booking.BookingRequest) (*booking.BookingConfirmation, error)
	trackFn    func(ctx context.Context, token string) (*booking.TrackingView, error)
	listApptFn func(ctx context.Context, doctorID int64, date string) (*booking.DoctorQueue, error)
	doctorsFn  func(ctx context.Context) ([]booking.Doctor, error)
	slotsFn    func(ctx context.Context, doctorID int64, date string) ([]booking.SlotView, error)
	completeFn func(ctx context.Context, token string) (*booking.Appointment, error)
	deleteFn   func(ctx context.Context, token string) error
}

func (s *stubBooking) GenerateSlots(ctx context.Context, doctorID int64, date string) (*booking.GenerateResult, error) {
	return s.generateFn(ctx, doctorID, date)
}

func (s *stubBooking) BookSlot(ctx context.Context, req booking.BookingRequest) (*booking.BookingConfirmation, error) {
	return s.bookFn(ctx, req)
}

func (s *stubBooking) TrackAppointment(ctx context.Context, token string) (*booking.TrackingView, error) {
	return s.trackFn(ctx, token)
}

func (s *stubBooking) ListDoctorAppointments(ctx context.Context, doctorID int64, date string) (*booking.DoctorQueue, error) {
	return s.listApptFn(ctx, doctorID, date)
}

func (s *stubBooking) ListDoctors(ctx context.Context) ([]booking.Doctor, error) {
	return s.doctorsFn(ctx)
}

func (s *stubBooking) ListAvailableSlots(ctx context.Context, doctorID int64, date string) ([]booking.SlotView, error) {
	return s.slotsFn(ctx, doctorID, date)
}

func (s *stubBooking) CompleteAppointment(ctx context.Context, token string) (*booking.Appointment, error) {
	return s.completeFn(ctx, token)
}

func (s *stubBooking) DeleteAppointment(ctx context.Context, token string) error {
	return s.deleteFn(ctx, token)
}

type stubDoctors struct {
	registerFn func(ctx context.Context, reg doctor.Registration) (*doctor.Profile, error)
	loginFn    func(ctx context.Context, email, password string) (string, *doctor.Profile, error)
	profileFn  func(ctx context.Context, id int64) (*doctor.Profile, error)
	deleteFn   func(ctx context.Context, id int64) error
}

func (s *stubDoctors) Register(ctx context.Context, reg doctor.Registration) (*doctor.Profile, error) {
	return s.registerFn(ctx, reg)
}

func (s *stubDoctors) Login(ctx context.Context, email, password string) (string, *doctor.Profile, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubDoctors) GetProfile(ctx context.Context, id int64) (*doctor.Profile, error) {
	return s.profileFn(ctx, id)
}

func (s *stubDoctors) DeleteAccount(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

func newTestRouter(b *stubBooking, d *stubDoctors, tokens *auth.TokenIssuer) http.Handler {
	return NewRouter(RouterConfig{
		Booking: b,
		Doctors: d,
		Tokens:  tokens,
		Env:     "test",
		Version: "test",
	})
}

func doRequest(t *testing.T, h http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestBookSlotEndpoint(t *testing.T) {
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)

	b := &stubBooking{
		bookFn: func(_ context.Context, req booking.BookingRequest) (*booking.BookingConfirmation, error) {
			assert.Equal(t, int64(1), req.DoctorID)
			assert.Equal(t, int64(5), req.SlotID)
			return &booking.BookingConfirmation{
				AppointmentID: "APT1TEST",
				QueueNumber:   2,
				Date:          "2026-03-04",
				Time:          "9:15 AM",
			}, nil
		},
	}
	router := newTestRouter(b, &stubDoctors{}, tokens)

	rec := doRequest(t, router, http.MethodPost, "/book/slot",
		`{"doctor_id":1,"slot_id":5,"patient_name":"Ravi"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp BookSlotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "APT1TEST", resp.AppointmentID)
	assert.Equal(t, 2, resp.QueueNumber)
	assert.Equal(t, "9:15 AM", resp.AppointmentTime)
}

func TestBookSlotEndpointConflict(t *testing.T) {
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	b := &stubBooking{
		bookFn: func(context.Context, booking.BookingRequest) (*booking.BookingConfirmation, error) {
			return nil, booking.ErrSlotUnavailable
		},
	}
	router := newTestRouter(b, &stubDoctors{}, tokens)

	rec := doRequest(t, router, http.MethodPost, "/book/slot",
		`{"doctor_id":1,"slot_id":5,"patient_name":"Ravi"}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBookSlotEndpointValidation(t *testing.T) {
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	b := &stubBooking{
		bookFn: func(context.Context, booking.BookingRequest) (*booking.BookingConfirmation, error) {
			return nil, &booking.ValidationError{Msg: "doctor_id, slot_id and patient_name are required"}
		},
	}
	router := newTestRouter(b, &stubDoctors{}, tokens)

	rec := doRequest(t, router, http.MethodPost, "/book/slot", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateSlotsEndpoint(t *testing.T) {
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	b := &stubBooking{
		generateFn: func(_ context.Context, doctorID int64, date string) (*booking.GenerateResult, error) {
			assert.Equal(t, int64(1), doctorID)
			assert.Equal(t, "2026-03-04", date)
			return &booking.GenerateResult{Created: 32}, nil
		},
	}
	router := newTestRouter(b, &stubDoctors{}, tokens)

	rec := doRequest(t, router, http.MethodPost, "/doctor/generate-slots",
		`{"doctor_id":1,"date":"2026-03-04"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp GenerateSlotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 32, resp.Created)
}

func TestGenerateSlotsEndpointAlreadyGenerated(t *testing.T) {
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	b := &stubBooking{
		generateFn: func(context.Context, int64, string) (*booking.GenerateResult, error) {
			return &booking.GenerateResult{AlreadyGenerated: true}, nil
		},
	}
	router := newTestRouter(b, &stubDoctors{}, tokens)

	rec := doRequest(t, router, http.MethodPost, "/doctor/generate-slots",
		`{"doctor_id":1,"date":"2026-03-04"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Slots already generated")
}

func TestTrackEndpointNotFound(t *testing.T) {
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	b := &stubBooking{
		trackFn: func(context.Context, string) (*booking.TrackingView, error) {
			return nil, booking.ErrAppointmentNotFound
		},
	}
	router := newTestRouter(b, &stubDoctors{}, tokens)

	rec := doRequest(t, router, http.MethodGet, "/track/APTMISSING", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTrackEndpoint(t *testing.T) {
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	age := 34
	b := &stubBooking{
		trackFn: func(_ context.Context, token string) (*booking.TrackingView, error) {
			assert.Equal(t, "APT1TEST", token)
			return &booking.TrackingView{
				AppointmentID: "APT1TEST",
				PatientName:   "Ravi",
				PatientAge:    &age,
				Status:        booking.StatusScheduled,
				Date:          "2026-03-04",
				SlotTime:      "9:30 AM",
				QueueNumber:   3,
				PatientsAhead: 2,
				DelayMins:     30,
				ExpectedTime:  "9:30 AM",
			}, nil
		},
	}
	router := newTestRouter(b, &stubDoctors{}, tokens)

	rec := doRequest(t, router, http.MethodGet, "/track/APT1TEST", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TrackResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.PatientsAhead)
	assert.Equal(t, 3, resp.QueueNumber)
	assert.Equal(t, 30, resp.DelayMins)
}

func TestDoctorAppointmentsEndpoint(t *testing.T) {
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	b := &stubBooking{
		listApptFn: func(_ context.Context, doctorID int64, date string) (*booking.DoctorQueue, error) {
			assert.Equal(t, int64(1), doctorID)
			assert.Equal(t, "2026-03-04", date)
			serving := booking.QueueEntry{AppointmentID: "APT1", QueueNumber: 1, Status: booking.StatusScheduled}
			return &booking.DoctorQueue{
				Doctor:     booking.Doctor{ID: 1, Name: "Asha Verma", SlotDuration: 15},
				Date:       "2026-03-04",
				NowServing: &serving,
				Waiting:    []booking.QueueEntry{{AppointmentID: "APT2", QueueNumber: 2, Status: booking.StatusScheduled}},
				All: []booking.QueueEntry{
					{AppointmentID: "APT1", QueueNumber: 1, Status: booking.StatusScheduled},
					{AppointmentID: "APT2", QueueNumber: 2, Status: booking.StatusScheduled},
				},
			}, nil
		},
	}
	router := newTestRouter(b, &stubDoctors{}, tokens)

	rec := doRequest(t, router, http.MethodGet, "/doctor/appointments/1?target_date=2026-03-04", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DoctorAppointmentsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.NowServing)
	assert.Equal(t, "APT1", resp.NowServing.AppointmentID)
	assert.Len(t, resp.WaitingList, 1)
	assert.Len(t, resp.AllAppointments, 2)
}

func TestRegisterEndpointDuplicateEmail(t *testing.T) {
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	d := &stubDoctors{
		registerFn: func(context.Context, doctor.Registration) (*doctor.Profile, error) {
			return nil, doctor.ErrEmailTaken
		},
	}
	router := newTestRouter(&stubBooking{}, d, tokens)

	rec := doRequest(t, router, http.MethodPost, "/doctor/register",
		`{"name":"A","specialization":"B","email":"dup@clinic.test","password":"s3cret"}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDoctorMeRequiresToken(t *testing.T) {
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	router := newTestRouter(&stubBooking{}, &stubDoctors{}, tokens)

	rec := doRequest(t, router, http.MethodGet, "/doctor/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDoctorMeWithToken(t *testing.T) {
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	d := &stubDoctors{
		profileFn: func(_ context.Context, id int64) (*doctor.Profile, error) {
			assert.Equal(t, int64(7), id)
			return &doctor.Profile{ID: 7, Name: "Asha Verma", SlotDuration: 15}, nil
		},
	}
	router := newTestRouter(&stubBooking{}, d, tokens)

	token, err := tokens.Issue(7, "Asha Verma")
	require.NoError(t, err)

	rec := doRequest(t, router, http.MethodGet, "/doctor/me", "",
		map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Asha Verma")
}

func TestDeleteAppointmentEndpoint(t *testing.T) {
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	b := &stubBooking{
		deleteFn: func(_ context.Context, token string) error {
			assert.Equal(t, "APT1TEST", token)
			return nil
		},
	}
	router := newTestRouter(b, &stubDoctors{}, tokens)

	rec := doRequest(t, router, http.MethodDelete, "/appointment/APT1TEST", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
