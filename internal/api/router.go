package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/HouseOfSounds/VitaeEMR/internal/records"
	"github.com/HouseOfSounds/VitaeEMR/internal/session"
)

type RouterConfig struct {
	Service  *records.Service
	Sessions session.Store
	Verifier *session.Verifier
	Cookies  CookieSettings
	Logger   zerolog.Logger
	Postgres Pinger // nil when running on the memory driver
	Redis    Pinger // nil when sessions are kept in memory
	Env      string
	Version  string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	metrics := NewMetrics()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(RecoveryMiddleware)
	r.Use(metrics.Middleware)

	health := NewHealthHandler(cfg.Postgres, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	svc := cfg.Service
	r.Route("/api", func(r chi.Router) {
		r.Post("/login", loginHandler(svc, cfg.Sessions, cfg.Verifier, cfg.Cookies))
		r.Post("/logout", logoutHandler(cfg.Sessions, cfg.Cookies))

		r.Group(func(r chi.Router) {
			r.Use(requireSession(svc, cfg.Sessions, cfg.Cookies))

			r.Get("/auth/user", currentUserHandler(svc))
			r.Get("/dashboard/metrics", dashboardMetricsHandler(svc))

			r.Get("/patients", listPatientsHandler(svc))
			r.Post("/patients", createPatientHandler(svc))
			r.Get("/patients/search", searchPatientsHandler(svc))
			r.Get("/patients/{id}", getPatientHandler(svc))
			r.Put("/patients/{id}", updatePatientHandler(svc))
			r.Delete("/patients/{id}", deletePatientHandler(svc))

			r.Get("/appointments", listAppointmentsHandler(svc))
			r.Post("/appointments", createAppointmentHandler(svc))
			r.Get("/appointments/today", todaysAppointmentsHandler(svc))
			r.Get("/appointments/date/{date}", appointmentsByDateHandler(svc))
			r.Get("/appointments/doctor/{doctorId}", appointmentsByDoctorHandler(svc))
			r.Get("/appointments/{id}", getAppointmentHandler(svc))
			r.Put("/appointments/{id}", updateAppointmentHandler(svc))
			r.Delete("/appointments/{id}", deleteAppointmentHandler(svc))

			r.Get("/clinical-notes", listClinicalNotesHandler(svc))
			r.Post("/clinical-notes", createClinicalNoteHandler(svc))
			r.Get("/clinical-notes/patient/{patientId}", clinicalNotesByPatientHandler(svc))
			r.Get("/clinical-notes/{id}", getClinicalNoteHandler(svc))
			r.Put("/clinical-notes/{id}", updateClinicalNoteHandler(svc))
			r.Delete("/clinical-notes/{id}", deleteClinicalNoteHandler(svc))

			r.Get("/prescriptions", listPrescriptionsHandler(svc))
			r.Post("/prescriptions", createPrescriptionHandler(svc))
			r.Get("/prescriptions/patient/{patientId}", prescriptionsByPatientHandler(svc))
			r.Get("/prescriptions/{id}", getPrescriptionHandler(svc))
			r.Put("/prescriptions/{id}", updatePrescriptionHandler(svc))
			r.Delete("/prescriptions/{id}", deletePrescriptionHandler(svc))

			r.Get("/staff", listStaffHandler(svc))
			r.Post("/staff", createStaffHandler(svc))
			r.Put("/staff/{id}", updateStaffHandler(svc))
			r.Delete("/staff/{id}", removeStaffHandler(svc))
		})
	})

	return r
}
