package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the pgx surface the repository needs. *pgxpool.Pool satisfies it, as
// does pgxmock in tests.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgRepository struct {
	db DB
}

func NewPgRepository(db DB) *PgRepository {
	return &PgRepository{db: db}
}

const appointmentColumns = `appointment_id, doctor_id, patient_id, slot_id, queue_number, status,
	       patient_name, patient_age, patient_email, patient_phone,
	       appointment_date::text, appointment_time::text, created_at`

// Helpers

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Specialization,
		&d.StartTime,
		&d.EndTime,
		&d.SlotDuration,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}
	return &d, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.Token,
		&a.DoctorID,
		&a.PatientID,
		&a.SlotID,
		&a.QueueNumber,
		&a.Status,
		&a.PatientName,
		&a.PatientAge,
		&a.PatientEmail,
		&a.PatientPhone,
		&a.Date,
		&a.Time,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullInt(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

// Interface methods

func (r *PgRepository) GetDoctorByID(ctx context.Context, id int64) (*Doctor, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, full_name, specialization,
		       COALESCE(start_time::text, ''), COALESCE(end_time::text, ''), slot_duration
		FROM doctors
		WHERE id = $1
	`, id)
	return scanDoctor(row)
}

func (r *PgRepository) ListDoctors(ctx context.Context) ([]Doctor, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, full_name, specialization,
		       COALESCE(start_time::text, ''), COALESCE(end_time::text, ''), slot_duration
		FROM doctors
		ORDER BY full_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	return result, rows.Err()
}

// InsertSlots holds the existence check and the bulk insert in one
// transaction so concurrent generation requests cannot double-insert. The
// unique index on (doctor_id, date, time) is the backstop: a violation means
// a peer committed first, which is not an error.
func (r *PgRepository) InsertSlots(ctx context.Context, doctorID int64, date string, times []string) (int, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("begin slot generation: %w", err)
	}
	defer tx.Rollback(ctx)

	var count int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM time_slots WHERE doctor_id = $1 AND date = $2
	`, doctorID, date).Scan(&count)
	if err != nil {
		return 0, false, fmt.Errorf("count existing slots: %w", err)
	}
	if count > 0 {
		if err := tx.Commit(ctx); err != nil {
			return 0, false, fmt.Errorf("commit slot generation: %w", err)
		}
		return 0, true, nil
	}

	for _, t := range times {
		_, err := tx.Exec(ctx, `
			INSERT INTO time_slots (doctor_id, date, time, is_booked)
			VALUES ($1, $2, $3, false)
		`, doctorID, date, t)
		if err != nil {
			if isUniqueViolation(err) {
				return 0, true, nil
			}
			return 0, false, fmt.Errorf("insert slot: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, false, fmt.Errorf("commit slot generation: %w", err)
	}
	return len(times), false, nil
}

func (r *PgRepository) ListOpenSlots(ctx context.Context, doctorID int64, date string) ([]TimeSlot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, doctor_id, date::text, time::text, is_booked
		FROM time_slots
		WHERE doctor_id = $1 AND date = $2 AND is_booked = false
		ORDER BY time ASC
	`, doctorID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TimeSlot
	for rows.Next() {
		var s TimeSlot
		if err := rows.Scan(&s.ID, &s.DoctorID, &s.Date, &s.Time, &s.Booked); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// BookSlot is the booking transaction. The claim is a single conditional
// update, so of any number of concurrent requests for one slot exactly one
// sees a row come back; the queue number is computed inside the same
// transaction, with the unique index on (doctor_id, appointment_date,
// queue_number) as the backstop against a concurrent same-day booking
// reading the same max.
func (r *PgRepository) BookSlot(ctx context.Context, req BookingRequest, token string) (*Appointment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin booking: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		slotID   int64
		date     string
		slotTime string
	)
	err = tx.QueryRow(ctx, `
		UPDATE time_slots
		SET is_booked = true
		WHERE id = $1 AND doctor_id = $2 AND is_booked = false
		RETURNING id, date::text, time::text
	`, req.SlotID, req.DoctorID).Scan(&slotID, &date, &slotTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotUnavailable
		}
		return nil, fmt.Errorf("claim slot: %w", err)
	}

	patientID, err := resolvePatient(ctx, tx, req)
	if err != nil {
		return nil, err
	}

	var queueNumber int
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(queue_number), 0) + 1
		FROM appointments
		WHERE doctor_id = $1 AND appointment_date = $2::date
	`, req.DoctorID, date).Scan(&queueNumber)
	if err != nil {
		return nil, fmt.Errorf("next queue number: %w", err)
	}

	appt := &Appointment{
		Token:        token,
		DoctorID:     req.DoctorID,
		PatientID:    patientID,
		SlotID:       slotID,
		QueueNumber:  queueNumber,
		Status:       StatusScheduled,
		PatientName:  req.PatientName,
		PatientAge:   nullInt(req.PatientAge),
		PatientEmail: nullString(req.PatientEmail),
		PatientPhone: nullString(req.PatientPhone),
		Date:         date,
		Time:         slotTime,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO appointments
			(appointment_id, doctor_id, patient_id, slot_id, queue_number, status,
			 patient_name, patient_age, patient_email, patient_phone,
			 appointment_date, appointment_time, created_at)
		VALUES ($1, $2, $3, $4, $5, 'scheduled', $6, $7, $8, $9, $10::date, $11, now())
		RETURNING created_at
	`, token, req.DoctorID, patientID, slotID, queueNumber,
		req.PatientName, appt.PatientAge, appt.PatientEmail, appt.PatientPhone,
		date, slotTime).Scan(&appt.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlotUnavailable
		}
		return nil, fmt.Errorf("insert appointment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit booking: %w", err)
	}
	return appt, nil
}

// resolvePatient reuses a returning patient by email when one is supplied,
// otherwise inserts a fresh record. Patients without email cannot be
// deduplicated and always get a new row.
func resolvePatient(ctx context.Context, tx pgx.Tx, req BookingRequest) (int64, error) {
	if req.PatientEmail != "" {
		var id int64
		err := tx.QueryRow(ctx, `
			SELECT id FROM patients WHERE email = $1
		`, req.PatientEmail).Scan(&id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("lookup patient: %w", err)
		}
	}

	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO patients (full_name, email, phone, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING id
	`, req.PatientName, nullString(req.PatientEmail), nullString(req.PatientPhone)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert patient: %w", err)
	}
	return id, nil
}

func (r *PgRepository) GetAppointmentByToken(ctx context.Context, token string) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE appointment_id = $1
	`, token)
	return scanAppointment(row)
}

func (r *PgRepository) ListScheduledByTime(ctx context.Context, doctorID int64, date string) ([]Appointment, error) {
	return r.listAppointments(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_id = $1 AND appointment_date = $2::date AND status = 'scheduled'
		ORDER BY appointment_time ASC
	`, doctorID, date)
}

func (r *PgRepository) ListByQueueNumber(ctx context.Context, doctorID int64, date string) ([]Appointment, error) {
	return r.listAppointments(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_id = $1 AND appointment_date = $2::date
		ORDER BY queue_number ASC
	`, doctorID, date)
}

func (r *PgRepository) listAppointments(ctx context.Context, sql string, args ...any) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func (r *PgRepository) CompleteAppointment(ctx context.Context, token string) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'completed'
		WHERE appointment_id = $1
		RETURNING `+appointmentColumns, token)
	return scanAppointment(row)
}

// DeleteAppointment removes the record and releases the slot it occupied.
// Both writes ride one transaction so a failure cannot strand a booked slot
// with no owning appointment.
func (r *PgRepository) DeleteAppointment(ctx context.Context, token string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback(ctx)

	var slotID int64
	err = tx.QueryRow(ctx, `
		DELETE FROM appointments WHERE appointment_id = $1 RETURNING slot_id
	`, token).Scan(&slotID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAppointmentNotFound
		}
		return fmt.Errorf("delete appointment: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE time_slots SET is_booked = false WHERE id = $1
	`, slotID)
	if err != nil {
		return fmt.Errorf("release slot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}
