package booking

import (
	"time"
)

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Doctor is the public profile plus the schedule configuration the slot
// generator works from. Times are stored as Postgres renders them
// ("HH:MM:SS"); SlotDuration is in minutes.
type Doctor struct {
	ID             int64
	Name           string
	Specialization string
	StartTime      string
	EndTime        string
	SlotDuration   int
}

type TimeSlot struct {
	ID       int64
	DoctorID int64
	Date     string // YYYY-MM-DD
	Time     string // HH:MM:SS
	Booked   bool
}

type Patient struct {
	ID        int64
	Name      string
	Email     *string
	Phone     *string
	CreatedAt time.Time
}

// Appointment is the durable booking record. Token is the external
// appointment identifier handed to patients; QueueNumber is the
// booking-order sequence assigned when the slot was claimed.
type Appointment struct {
	Token        string
	DoctorID     int64
	PatientID    int64
	SlotID       int64
	QueueNumber  int
	Status       AppointmentStatus
	PatientName  string
	PatientAge   *int
	PatientEmail *string
	PatientPhone *string
	Date         string // YYYY-MM-DD
	Time         string // HH:MM:SS
	CreatedAt    time.Time
}

type BookingRequest struct {
	DoctorID     int64
	SlotID       int64
	PatientName  string
	PatientEmail string
	PatientPhone string
	PatientAge   int
}

// BookingConfirmation is what the patient sees after a successful claim.
type BookingConfirmation struct {
	AppointmentID string
	QueueNumber   int
	Date          string
	Time          string // display format
}

// TrackingView reports a patient's live place in the queue. QueueNumber here
// is the time-ordered rank recomputed at read time, which can differ from the
// stored booking-order number when slots were booked out of chronological
// order. For completed or cancelled appointments only Status is meaningful.
type TrackingView struct {
	AppointmentID string
	PatientName   string
	PatientAge    *int
	Status        AppointmentStatus
	Date          string
	SlotTime      string // display format
	QueueNumber   int
	PatientsAhead int
	DelayMins     int
	ExpectedTime  string
}

type QueueEntry struct {
	AppointmentID string
	PatientName   string
	PatientAge    *int
	Status        AppointmentStatus
	QueueNumber   int
	SlotTime      string // display format
	Date          string
}

// DoctorQueue is the dashboard view: all of a day's appointments ordered by
// stored queue number, with the scheduled ones split into the one being
// served and the rest.
type DoctorQueue struct {
	Doctor     Doctor
	Date       string
	NowServing *QueueEntry
	Waiting    []QueueEntry
	All        []QueueEntry
}

type SlotView struct {
	ID          int64
	Date        string
	Time24      string
	DisplayTime string
}

type GenerateResult struct {
	Created          int
	AlreadyGenerated bool
}
