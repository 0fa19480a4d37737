// Package doctor handles doctor accounts: registration with a working-hours
// window, credential checks, and account deletion with its data cascade.
package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/medtrack/clinic-queue/internal/auth"
	"github.com/medtrack/clinic-queue/internal/booking"
	"github.com/medtrack/clinic-queue/internal/timefmt"
)

var (
	ErrNotFound           = errors.New("doctor not found")
	ErrEmailTaken         = errors.New("doctor with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const minPasswordLen = 5

// DB is the pgx surface the service needs; *pgxpool.Pool and pgxmock both
// satisfy it.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Registration struct {
	Name           string
	Specialization string
	Email          string
	Password       string
	StartTime      string
	EndTime        string
	SlotDuration   int
}

type Profile struct {
	ID             int64
	Name           string
	Specialization string
	Email          string
	StartTime      string
	EndTime        string
	SlotDuration   int
}

type Service struct {
	db     DB
	tokens *auth.TokenIssuer
}

func NewService(db DB, tokens *auth.TokenIssuer) *Service {
	return &Service{
		db:     db,
		tokens: tokens,
	}
}

// Register creates the doctor account. The working window is optional at
// registration; the slot generator falls back to clinic defaults until it
// is set.
func (s *Service) Register(ctx context.Context, reg Registration) (*Profile, error) {
	if reg.Name == "" || reg.Specialization == "" || reg.Email == "" || reg.Password == "" {
		return nil, &booking.ValidationError{Msg: "name, specialization, email and password are required"}
	}
	if len(reg.Password) < minPasswordLen {
		return nil, &booking.ValidationError{Msg: fmt.Sprintf("password must be at least %d characters", minPasswordLen)}
	}

	startTime, endTime, err := normalizedWindow(reg.StartTime, reg.EndTime)
	if err != nil {
		return nil, err
	}

	slotDuration := reg.SlotDuration
	if slotDuration == 0 {
		slotDuration = booking.DefaultSlotDuration
	}
	if slotDuration < 0 {
		return nil, &booking.ValidationError{Msg: "slot_duration must be positive"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p := &Profile{
		Name:           reg.Name,
		Specialization: reg.Specialization,
		Email:          reg.Email,
		StartTime:      startTime,
		EndTime:        endTime,
		SlotDuration:   slotDuration,
	}

	err = s.db.QueryRow(ctx, `
		INSERT INTO doctors (full_name, specialization, email, password, start_time, end_time, slot_duration)
		VALUES ($1, $2, $3, $4, NULLIF($5, '')::time, NULLIF($6, '')::time, $7)
		RETURNING id
	`, reg.Name, reg.Specialization, reg.Email, string(hash), startTime, endTime, slotDuration).Scan(&p.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert doctor: %w", err)
	}

	return p, nil
}

// normalizedWindow validates the optional working window and renders it in
// storage format. Both ends must be given together.
func normalizedWindow(start, end string) (string, string, error) {
	if start == "" && end == "" {
		return "", "", nil
	}
	if start == "" || end == "" {
		return "", "", &booking.ValidationError{Msg: "start_time and end_time must be set together"}
	}

	startMins, err := timefmt.ToMinutes(start)
	if err != nil {
		return "", "", &booking.ValidationError{Msg: fmt.Sprintf("invalid start_time: %v", err)}
	}
	endMins, err := timefmt.ToMinutes(end)
	if err != nil {
		return "", "", &booking.ValidationError{Msg: fmt.Sprintf("invalid end_time: %v", err)}
	}
	if startMins >= endMins {
		return "", "", &booking.ValidationError{Msg: "start_time must be before end_time"}
	}

	return timefmt.FromMinutes(startMins).Storage, timefmt.FromMinutes(endMins).Storage, nil
}

// Login checks the doctor's credentials and returns a signed session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Profile, error) {
	if email == "" || password == "" {
		return "", nil, &booking.ValidationError{Msg: "email and password are required"}
	}

	var (
		p    Profile
		hash string
	)
	err := s.db.QueryRow(ctx, `
		SELECT id, full_name, specialization, email, password,
		       COALESCE(start_time::text, ''), COALESCE(end_time::text, ''), slot_duration
		FROM doctors
		WHERE email = $1
	`, email).Scan(&p.ID, &p.Name, &p.Specialization, &p.Email, &hash,
		&p.StartTime, &p.EndTime, &p.SlotDuration)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, ErrNotFound
		}
		return "", nil, fmt.Errorf("load doctor: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(p.ID, p.Name)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, &p, nil
}

func (s *Service) GetProfile(ctx context.Context, id int64) (*Profile, error) {
	var p Profile
	err := s.db.QueryRow(ctx, `
		SELECT id, full_name, specialization, email,
		       COALESCE(start_time::text, ''), COALESCE(end_time::text, ''), slot_duration
		FROM doctors
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Specialization, &p.Email,
		&p.StartTime, &p.EndTime, &p.SlotDuration)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}
	return &p, nil
}

// DeleteAccount removes the doctor with every appointment and slot they own.
// One transaction: either the whole account disappears or none of it does.
func (s *Service) DeleteAccount(ctx context.Context, id int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin account delete: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM appointments WHERE doctor_id = $1`, id); err != nil {
		return fmt.Errorf("delete appointments: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM time_slots WHERE doctor_id = $1`, id); err != nil {
		return fmt.Errorf("delete time slots: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete doctor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit account delete: %w", err)
	}
	return nil
}
