package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hackgods/vet-appointment-scheduling/internal/auth"
	"github.com/hackgods/vet-appointment-scheduling/internal/metrics"
)

type RouterConfig struct {
	Appointments  AppointmentService
	Practitioners PractitionerService
	Health        *HealthHandler
	Metrics       *metrics.Collector
	// Validator guards /api/v1. Nil disables authentication.
	Validator auth.Validator
	Location  *time.Location
	Logger    *zap.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(log))
	r.Use(middleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(MetricsMiddleware(cfg.Metrics))
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	if cfg.Health != nil {
		r.Get("/health/live", cfg.Health.Liveness)
		r.Get("/health/ready", cfg.Health.Readiness)
	}

	appts := &appointmentHandler{svc: cfg.Appointments, loc: loc, log: log}
	vets := &practitionerHandler{svc: cfg.Practitioners, loc: loc, log: log}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Validator != nil {
			r.Use(AuthMiddleware(cfg.Validator, log))
		}

		r.Route("/appointments", func(r chi.Router) {
			r.Get("/", appts.list)
			r.Post("/", appts.create)
			r.Get("/upcoming", appts.upcoming)
			r.Get("/today", appts.today)
			r.Get("/{id}", appts.get)
			r.Put("/{id}", appts.update)
			r.Post("/{id}/cancel", appts.cancel)
			r.Patch("/{id}/status", appts.setStatus)
		})

		r.Route("/practitioners", func(r chi.Router) {
			r.Get("/", vets.list)
			r.Post("/", vets.create)
			r.Get("/count-active", vets.countActive)
			r.Get("/{id}", vets.get)
			r.Put("/{id}", vets.update)
			r.Patch("/{id}/deactivate", vets.deactivate)
			r.Delete("/{id}", vets.delete)
			r.Get("/{id}/availability", appts.availability)
			r.Get("/{id}/available", appts.isAvailable)
		})
	})

	return r
}
