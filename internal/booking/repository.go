package booking

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrSlotUnavailable     = errors.New("slot already booked or not found")
)

// ValidationError rejects malformed input before any state is touched.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// Repository contains all DB interactions needed by the service. Methods that
// mutate more than one row run as a single transaction and either fully
// commit or leave no trace.
type Repository interface {
	GetDoctorByID(ctx context.Context, id int64) (*Doctor, error)
	ListDoctors(ctx context.Context) ([]Doctor, error)

	// InsertSlots atomically checks for an existing slot set for
	// (doctor, date) and bulk-inserts the given times if none exist.
	// existed reports that the set was already generated.
	InsertSlots(ctx context.Context, doctorID int64, date string, times []string) (created int, existed bool, err error)
	ListOpenSlots(ctx context.Context, doctorID int64, date string) ([]TimeSlot, error)

	// BookSlot claims the slot with compare-and-set semantics, resolves the
	// patient, assigns the next queue number for (doctor, date), and inserts
	// the appointment, all in one transaction.
	BookSlot(ctx context.Context, req BookingRequest, token string) (*Appointment, error)

	GetAppointmentByToken(ctx context.Context, token string) (*Appointment, error)
	ListScheduledByTime(ctx context.Context, doctorID int64, date string) ([]Appointment, error)
	ListByQueueNumber(ctx context.Context, doctorID int64, date string) ([]Appointment, error)

	CompleteAppointment(ctx context.Context, token string) (*Appointment, error)

	// DeleteAppointment removes the record and releases its slot in one
	// transaction.
	DeleteAppointment(ctx context.Context, token string) error
}
