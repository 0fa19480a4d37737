package booking

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/medtrack/clinic-queue/internal/timefmt"
)

// Defaults applied when a doctor registered without completing the schedule
// section of their profile.
const (
	DefaultStartTime    = "09:00 AM"
	DefaultEndTime      = "05:00 PM"
	DefaultSlotDuration = 15
)

// Cache is an advisory read cache in front of tracking and directory
// queries. Implementations may drop entries at any time; the repository
// stays the source of truth.
type Cache interface {
	GetTracking(ctx context.Context, token string) (*TrackingView, bool)
	SetTracking(ctx context.Context, view *TrackingView)
	DropTracking(ctx context.Context, token string)
	GetDoctors(ctx context.Context) ([]Doctor, bool)
	SetDoctors(ctx context.Context, doctors []Doctor)
}

type Service struct {
	repo  Repository
	cache Cache
	now   func() time.Time
}

// NewService builds the booking service. cache may be nil, in which case all
// reads go straight to the repository.
func NewService(repo Repository, cache Cache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		now:   time.Now,
	}
}

// GenerateSlots expands the doctor's working window into fixed-duration
// slots for the given date. Calling it again for the same (doctor, date) is
// a no-op reported via GenerateResult.AlreadyGenerated.
func (s *Service) GenerateSlots(ctx context.Context, doctorID int64, date string) (*GenerateResult, error) {
	if doctorID <= 0 {
		return nil, validationf("doctor_id is required")
	}
	date, err := timefmt.NormalizeDate(date)
	if err != nil {
		return nil, validationf("invalid date: %v", err)
	}

	doc, err := s.repo.GetDoctorByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	start, end, dur, err := workingWindow(doc)
	if err != nil {
		return nil, err
	}

	times := SlotTimes(start, end, dur)
	created, existed, err := s.repo.InsertSlots(ctx, doctorID, date, times)
	if err != nil {
		return nil, fmt.Errorf("generate slots: %w", err)
	}
	if existed {
		return &GenerateResult{AlreadyGenerated: true}, nil
	}
	return &GenerateResult{Created: created}, nil
}

// SlotTimes partitions [start, end) minutes-since-midnight into dur-sized
// intervals and renders each start in storage format. A final partial
// interval that would run past end is discarded.
func SlotTimes(start, end, dur int) []string {
	var times []string
	for t := start; t < end; t += dur {
		times = append(times, timefmt.FromMinutes(t).Storage)
	}
	return times
}

func workingWindow(doc *Doctor) (start, end, dur int, err error) {
	startStr := doc.StartTime
	if startStr == "" {
		startStr = DefaultStartTime
	}
	endStr := doc.EndTime
	if endStr == "" {
		endStr = DefaultEndTime
	}

	start, err = timefmt.ToMinutes(startStr)
	if err != nil {
		return 0, 0, 0, validationf("invalid start_time: %v", err)
	}
	end, err = timefmt.ToMinutes(endStr)
	if err != nil {
		return 0, 0, 0, validationf("invalid end_time: %v", err)
	}

	dur = doc.SlotDuration
	if dur == 0 {
		dur = DefaultSlotDuration
	}
	if dur < 0 {
		return 0, 0, 0, validationf("slot_duration must be positive")
	}
	if start >= end {
		return 0, 0, 0, validationf("start_time must be before end_time")
	}
	return start, end, dur, nil
}

// BookSlot atomically claims a slot and assigns the next queue number for
// the doctor's day. Under concurrent requests for the same slot exactly one
// caller gets a confirmation; the rest get ErrSlotUnavailable.
func (s *Service) BookSlot(ctx context.Context, req BookingRequest) (*BookingConfirmation, error) {
	if req.DoctorID <= 0 || req.SlotID <= 0 || req.PatientName == "" {
		return nil, validationf("doctor_id, slot_id and patient_name are required")
	}

	token := NewAppointmentToken()
	appt, err := s.repo.BookSlot(ctx, req, token)
	if err != nil {
		return nil, err
	}

	return &BookingConfirmation{
		AppointmentID: appt.Token,
		QueueNumber:   appt.QueueNumber,
		Date:          appt.Date,
		Time:          timefmt.Display(appt.Time),
	}, nil
}

// TrackAppointment reports the patient's live queue position. The rank is
// recomputed from the time-ordered list of the day's scheduled appointments,
// not from the stored booking-order queue number.
func (s *Service) TrackAppointment(ctx context.Context, token string) (*TrackingView, error) {
	if token == "" {
		return nil, validationf("appointment_id is required")
	}

	if s.cache != nil {
		if view, ok := s.cache.GetTracking(ctx, token); ok {
			return view, nil
		}
	}

	appt, err := s.repo.GetAppointmentByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	view := &TrackingView{
		AppointmentID: appt.Token,
		PatientName:   appt.PatientName,
		PatientAge:    appt.PatientAge,
		Status:        appt.Status,
		Date:          appt.Date,
		SlotTime:      timefmt.Display(appt.Time),
	}
	view.ExpectedTime = view.SlotTime

	// Completed and cancelled appointments have no place in the queue.
	if appt.Status != StatusScheduled {
		return view, nil
	}

	scheduled, err := s.repo.ListScheduledByTime(ctx, appt.DoctorID, appt.Date)
	if err != nil {
		return nil, fmt.Errorf("load day queue: %w", err)
	}

	position := -1
	for i, a := range scheduled {
		if a.Token == token {
			position = i
			break
		}
	}

	ahead := position
	if ahead < 0 {
		ahead = 0
	}

	dur := DefaultSlotDuration
	if doc, err := s.repo.GetDoctorByID(ctx, appt.DoctorID); err == nil && doc.SlotDuration > 0 {
		dur = doc.SlotDuration
	} else if err != nil {
		log.Printf("track: doctor %d lookup failed, using default duration: %v", appt.DoctorID, err)
	}

	view.QueueNumber = position + 1
	view.PatientsAhead = ahead
	view.DelayMins = ahead * dur

	if s.cache != nil {
		s.cache.SetTracking(ctx, view)
	}
	return view, nil
}

// ListDoctorAppointments is the doctor dashboard: the day's appointments
// ordered by stored queue number, with the scheduled ones partitioned into
// the patient being served and the waiting list. An empty date means today.
func (s *Service) ListDoctorAppointments(ctx context.Context, doctorID int64, date string) (*DoctorQueue, error) {
	if doctorID <= 0 {
		return nil, validationf("doctor_id is required")
	}

	if date == "" {
		date = s.now().Format("2006-01-02")
	}
	date, err := timefmt.NormalizeDate(date)
	if err != nil {
		return nil, validationf("invalid date: %v", err)
	}

	doc, err := s.repo.GetDoctorByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	appts, err := s.repo.ListByQueueNumber(ctx, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	queue := &DoctorQueue{Doctor: *doc, Date: date}
	for _, a := range appts {
		entry := QueueEntry{
			AppointmentID: a.Token,
			PatientName:   a.PatientName,
			PatientAge:    a.PatientAge,
			Status:        a.Status,
			QueueNumber:   a.QueueNumber,
			SlotTime:      timefmt.Display(a.Time),
			Date:          a.Date,
		}
		queue.All = append(queue.All, entry)
		if a.Status != StatusScheduled {
			continue
		}
		if queue.NowServing == nil {
			serving := entry
			queue.NowServing = &serving
		} else {
			queue.Waiting = append(queue.Waiting, entry)
		}
	}
	return queue, nil
}

func (s *Service) ListDoctors(ctx context.Context) ([]Doctor, error) {
	if s.cache != nil {
		if doctors, ok := s.cache.GetDoctors(ctx); ok {
			return doctors, nil
		}
	}

	doctors, err := s.repo.ListDoctors(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetDoctors(ctx, doctors)
	}
	return doctors, nil
}

func (s *Service) ListAvailableSlots(ctx context.Context, doctorID int64, date string) ([]SlotView, error) {
	if doctorID <= 0 {
		return nil, validationf("doctor_id is required")
	}
	date, err := timefmt.NormalizeDate(date)
	if err != nil {
		return nil, validationf("invalid date: %v", err)
	}

	slots, err := s.repo.ListOpenSlots(ctx, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("list open slots: %w", err)
	}

	views := make([]SlotView, 0, len(slots))
	for _, slot := range slots {
		views = append(views, SlotView{
			ID:          slot.ID,
			Date:        slot.Date,
			Time24:      slot.Time,
			DisplayTime: timefmt.Display(slot.Time),
		})
	}
	return views, nil
}

func (s *Service) CompleteAppointment(ctx context.Context, token string) (*Appointment, error) {
	if token == "" {
		return nil, validationf("appointment_id is required")
	}

	appt, err := s.repo.CompleteAppointment(ctx, token)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.DropTracking(ctx, token)
	}
	return appt, nil
}

// DeleteAppointment removes the booking and frees its slot so it can be
// claimed again.
func (s *Service) DeleteAppointment(ctx context.Context, token string) error {
	if token == "" {
		return validationf("appointment_id is required")
	}

	if err := s.repo.DeleteAppointment(ctx, token); err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.DropTracking(ctx, token)
	}
	return nil
}
