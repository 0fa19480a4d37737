package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/medtrack/clinic-queue/internal/auth"
)

type RouterConfig struct {
	Booking BookingService
	Doctors DoctorService
	Tokens  *auth.TokenIssuer
	PgPool  *pgxpool.Pool
	Redis   *redis.Client
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	if cfg.PgPool != nil {
		health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
		r.Get("/health/live", health.Liveness)
		r.Get("/health/ready", health.Readiness)
	}

	// Public patient surface
	r.Get("/doctors", listDoctorsHandler(cfg.Booking))
	r.Get("/doctor/{doctor_id}/timeslots/{date}", listSlotsHandler(cfg.Booking))
	r.Post("/book/slot", bookSlotHandler(cfg.Booking))
	r.Get("/track/{appointment_id}", trackAppointmentHandler(cfg.Booking))
	r.Delete("/appointment/{appointment_id}", deleteAppointmentHandler(cfg.Booking))

	// Doctor surface
	r.Post("/doctor/register", registerDoctorHandler(cfg.Doctors))
	r.Post("/doctor/login", loginDoctorHandler(cfg.Doctors))
	r.Post("/doctor/generate-slots", generateSlotsHandler(cfg.Booking))
	r.Get("/doctor/appointments/{doctor_id}", doctorAppointmentsHandler(cfg.Booking))
	r.Put("/complete/{appointment_id}", completeAppointmentHandler(cfg.Booking))

	r.Group(func(r chi.Router) {
		r.Use(cfg.Tokens.Middleware)
		r.Get("/doctor/me", doctorMeHandler(cfg.Doctors))
		r.Delete("/doctor/me", deleteDoctorHandler(cfg.Doctors))
	})

	return r
}
