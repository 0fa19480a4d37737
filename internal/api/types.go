package api

import (
	"github.com/medtrack/clinic-queue/internal/booking"
	"github.com/medtrack/clinic-queue/internal/doctor"
)

type RegisterDoctorRequest struct {
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	SlotDuration   int    `json:"slot_duration"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type DoctorResponse struct {
	DoctorID       int64  `json:"doctor_id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization,omitempty"`
	StartTime      string `json:"start_time,omitempty"`
	EndTime        string `json:"end_time,omitempty"`
	SlotDuration   int    `json:"slot_duration"`
}

func doctorResponse(d booking.Doctor) DoctorResponse {
	return DoctorResponse{
		DoctorID:       d.ID,
		Name:           d.Name,
		Specialization: d.Specialization,
		StartTime:      d.StartTime,
		EndTime:        d.EndTime,
		SlotDuration:   d.SlotDuration,
	}
}

func profileResponse(p *doctor.Profile) DoctorResponse {
	return DoctorResponse{
		DoctorID:       p.ID,
		Name:           p.Name,
		Specialization: p.Specialization,
		StartTime:      p.StartTime,
		EndTime:        p.EndTime,
		SlotDuration:   p.SlotDuration,
	}
}

type GenerateSlotsRequest struct {
	DoctorID int64  `json:"doctor_id"`
	Date     string `json:"date"`
}

type GenerateSlotsResponse struct {
	Success bool   `json:"success"`
	Created int    `json:"created,omitempty"`
	Message string `json:"message"`
}

type SlotResponse struct {
	ID          int64  `json:"id"`
	Time24      string `json:"time_24"`
	DisplayTime string `json:"display_time"`
	Date        string `json:"date"`
}

type BookSlotRequest struct {
	DoctorID     int64  `json:"doctor_id"`
	SlotID       int64  `json:"slot_id"`
	PatientName  string `json:"patient_name"`
	PatientEmail string `json:"patient_email"`
	PatientPhone string `json:"patient_phone"`
	PatientAge   int    `json:"patient_age"`
}

type BookSlotResponse struct {
	AppointmentID   string `json:"appointment_id"`
	QueueNumber     int    `json:"queue_number"`
	AppointmentTime string `json:"appointment_time"`
	AppointmentDate string `json:"appointment_date"`
}

type TrackResponse struct {
	AppointmentID   string `json:"appointment_id"`
	PatientName     string `json:"patient_name"`
	PatientAge      *int   `json:"patient_age"`
	Status          string `json:"status"`
	SlotTime        string `json:"slot_time"`
	AppointmentDate string `json:"appointment_date"`
	QueueNumber     int    `json:"queue_number"`
	PatientsAhead   int    `json:"patients_ahead"`
	DelayMins       int    `json:"delay_mins"`
	ExpectedTime    string `json:"expected_time"`
}

type QueueEntryResponse struct {
	AppointmentID   string `json:"appointment_id"`
	PatientName     string `json:"patient_name"`
	PatientAge      *int   `json:"patient_age"`
	Status          string `json:"status"`
	QueueNumber     int    `json:"queue_number"`
	SlotTime        string `json:"slot_time"`
	AppointmentDate string `json:"appointment_date"`
}

func queueEntryResponse(e booking.QueueEntry) QueueEntryResponse {
	return QueueEntryResponse{
		AppointmentID:   e.AppointmentID,
		PatientName:     e.PatientName,
		PatientAge:      e.PatientAge,
		Status:          string(e.Status),
		QueueNumber:     e.QueueNumber,
		SlotTime:        e.SlotTime,
		AppointmentDate: e.Date,
	}
}

type DoctorAppointmentsResponse struct {
	Doctor          DoctorResponse       `json:"doctor"`
	NowServing      *QueueEntryResponse  `json:"nowServing"`
	WaitingList     []QueueEntryResponse `json:"waitingList"`
	AllAppointments []QueueEntryResponse `json:"allAppointments"`
	TargetDate      string               `json:"targetDate"`
}

type MessageResponse struct {
	Success bool   `json:"success,omitempty"`
	Message string `json:"message"`
}

type LoginResponse struct {
	Token string         `json:"token"`
	User  DoctorResponse `json:"user"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
