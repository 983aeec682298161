package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/HouseOfSounds/VitaeEMR/internal/config"
)

var (
	ErrUnauthenticated = errors.New("caller is not authenticated")
	ErrForbidden       = errors.New("caller is not allowed to perform this action")
)

// Caller is the authenticated staff member on whose behalf a call is made.
type Caller struct {
	UserID string
	Role   Role
}

func (c Caller) check() error {
	if c.UserID == "" {
		return ErrUnauthenticated
	}
	return nil
}

func (c Caller) requireAdmin() error {
	if err := c.check(); err != nil {
		return err
	}
	if c.Role != RoleAdmin {
		return ErrForbidden
	}
	return nil
}

type Service struct {
	users         UserRepository
	patients      PatientRepository
	appointments  AppointmentRepository
	notes         ClinicalNoteRepository
	prescriptions PrescriptionRepository
	assembler     *Assembler

	now            func() time.Time
	location       *time.Location
	monthlyRevenue float64
}

type Option func(*Service)

// WithClock replaces time.Now, used to decide the current calendar date.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repos Repositories, cfg config.Config, opts ...Option) *Service {
	s := &Service{
		users:          repos.Users,
		patients:       repos.Patients,
		appointments:   repos.Appointments,
		notes:          repos.Notes,
		prescriptions:  repos.Prescriptions,
		assembler:      NewAssembler(repos),
		now:            time.Now,
		location:       cfg.Location,
		monthlyRevenue: cfg.MonthlyRevenue,
	}
	if s.location == nil {
		s.location = time.Local
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today is the current calendar date in the clinic's zone, as YYYY-MM-DD.
func (s *Service) Today() string {
	return s.now().In(s.location).Format(time.DateOnly)
}

// -- Users --

// UpsertUser records a login from the identity provider. It runs before a
// session exists, so it takes no caller.
func (s *Service) UpsertUser(ctx context.Context, profile UserProfile) (*User, error) {
	if profile.ID == "" {
		return nil, errors.New("user id is required")
	}
	if profile.Role != nil && *profile.Role == "" {
		profile.Role = nil
	}

	u, err := s.users.Upsert(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, caller Caller, id string) (*User, error) {
	if err := caller.check(); err != nil {
		return nil, err
	}
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// -- Staff --

func (s *Service) ListStaff(ctx context.Context, caller Caller) ([]User, error) {
	if err := caller.requireAdmin(); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	return users, nil
}

// CreateStaff adds an account ahead of the person's first login. That login
// claims the row by email and re-keys it to the identity subject.
func (s *Service) CreateStaff(ctx context.Context, caller Caller, staff NewStaff) (*User, error) {
	if err := caller.requireAdmin(); err != nil {
		return nil, err
	}
	u, err := s.users.Create(ctx, StaffIDPrefix+uuid.NewString(), staff)
	if err != nil {
		return nil, fmt.Errorf("create staff: %w", err)
	}
	return u, nil
}

func (s *Service) UpdateStaff(ctx context.Context, caller Caller, id string, patch UserPatch) (*User, error) {
	if err := caller.requireAdmin(); err != nil {
		return nil, err
	}
	u, err := s.users.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update staff: %w", err)
	}
	return u, nil
}

func (s *Service) RemoveStaff(ctx context.Context, caller Caller, id string) error {
	if err := caller.requireAdmin(); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("remove staff: %w", err)
	}
	return nil
}

// -- Patients --

func (s *Service) ListPatients(ctx context.Context, caller Caller) ([]Patient, error) {
	if err := caller.check(); err != nil {
		return nil, err
	}
	patients, err := s.patients.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return patients, nil
}

func (s *Service) GetPatient(ctx context.Context, caller Caller, id int64) (*Patient, error) {
	if err := caller.check(); err != nil {
		return nil, err
	}
	p, err := s.patients.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return p, nil
}

func (s *Service) CreatePatient(ctx context.Context, caller Caller, in NewPatient) (*Patient, error) {
	if err := caller.check(); err != nil {
		return nil, err
	}
	p, err := s.patients.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return p, nil
}

func (s *Service) UpdatePatient(ctx context.Context, caller Caller, id int64, patch PatientPatch) (*Patient, error) {
	if err := caller.check(); err != nil {
		return nil, err
	}
	p, err := s.patients.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}
	return p, nil
}

func (s *Service) DeletePatient(ctx context.Context, caller Caller, id int64) error {
	if err := caller.check(); err != nil {
		return err
	}
	if err := s.patients.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	return nil
}

// SearchPatients matches query against first name, last name and email,
// case-insensitively. Minimum query length is the caller's concern.
func (s *Service) SearchPatients(ctx context.Context, caller Caller, query string) ([]Patient, error) {
	if err := caller.check(); err != nil {
		return nil, err
	}
	patients, err := s.patients.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search patients: %w", err)
	}
	return patients, nil
}

// -- Appointments --

func (s *Service) ListAppointments(ctx context.Context, caller Caller) ([]AppointmentWithPatient, error) {
	if err := caller.check(); err != nil {
		return nil, err
	}
	appts, err := s.appointments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return s.assembleAppointments(ctx, appts)
}

func (s *Service) GetAppointment(ctx context.Context, caller Caller, id int64) (*AppointmentWithPatient, error) {
	if err := caller.check(); err != nil {
		return nil, err
	}
	appt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	out, err := s.assembleAppointments(ctx, []Appointment{*appt})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// CreateAppointment returns the bare record. An empty doctor id means the
// caller is the doctor.
func (s *Service) CreateAppointment(ctx context.Context, caller Caller, in NewAppointment) (*Appointment, error) {
	if err := caller.check(); err != nil {
		return nil, err
	}
	if in.DoctorID == "" {
		in.DoctorID = caller.UserID
	}
	appt, err := s.appointments.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return appt, nil
}

func (s *Service) UpdateAppointment(ctx context.Context, caller Caller, id int64, patch AppointmentPatch) (*Appointment, error) {
	if err := caller.check(); err != nil {
		return nil, err
	}
	appt, err := s.appointments.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	return appt, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, caller Caller, id int64) error {
	if err := caller.check(); err != nil {
		return err
	}
	if err := s.appointments.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}

func (s *Service) ListAppointmentsByDate(ctx context.Context, caller Caller, date string) ([]AppointmentWithPatient, error) {
	if err := caller.check(); err != nil {
		return nil, err
	}
	appts, err := s.appointments.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list appointments by date: %w", err)
	}
	return s.assembleAppointments(ctx, appts)
}

func (s *Service) ListAppointmentsByDoctor(ctx context.Context, caller Caller, doctorID string) ([]AppointmentWithPatient, error) {
	if err := caller.check(); err != nil {
		return nil, err
	}
	appts, err := s.appointments.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list appointments by doctor: %w", err)
	}
	return s.assembleAppointments(ctx, appts)
}

// ListTodaysAppointments is ListAppointmentsByDate for the date at call time.
func (s *Service) ListTodaysAppointments(ctx context.Context, caller Caller) ([]AppointmentWithPatient, error) {
	return s.ListAppointmentsByDate(ctx, caller, s.Today())
}

func (s *Service) assembleAppointments(ctx context.Context, appts []Appointment) ([]AppointmentWithPatient, error) {
	out, err := s.assembler.Appointments(ctx, appts)
	if err != nil {
		return nil, fmt.Errorf("assemble appointments: %w", err)
	}
	return out, nil
}

// -- Clinical notes --

func (s *Service) ListClinicalNotes(ctx context.Context, caller Caller) ([]ClinicalNoteWithDetails, error) {
	if err := caller.check(); err != nil {
		return nil, err
	}
	notes, err := s.notes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clinical notes: %w", err)
	}
	return s.assembleNotes(ctx, notes)
}

func (s *Service) GetClinicalNote(ctx context.Context, caller Caller, id int64) (*ClinicalNoteWithDetails, error) {
	if err := caller.check(); err != nil {
		return nil, err
	}
	n, err := s.notes.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get clinical note: %w", err)
	}
	out, err := s.assembleNotes(ctx, []ClinicalNote{*n})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *Service) CreateClinicalNote(ctx context.Context, caller Caller, in NewClinicalNote) (*ClinicalNote, error) {
	if err := caller.check(); err != nil {
		return nil, err
	}
	if in.DoctorID == "" {
		in.DoctorID = caller.UserID
	}
	n, err := s.notes.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create clinical note: %w", err)
	}
	return n, nil
}

func (s *Service) UpdateClinicalNote(ctx context.Context, caller Caller, id int64, patch ClinicalNotePatch) (*ClinicalNote, error) {
	if err := caller.check(); err != nil {
		return nil, err
	}
	n, err := s.notes.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update clinical note: %w", err)
	}
	return n, nil
}

func (s *Service) DeleteClinicalNote(ctx context.Context, caller Caller, id int64) error {
	if err := caller.check(); err != nil {
		return err
	}
	if err := s.notes.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete clinical note: %w", err)
	}
	return nil
}

func (s *Service) ListClinicalNotesByPatient(ctx context.Context, caller Caller, patientID int64) ([]ClinicalNoteWithDetails, error) {
	if err := caller.check(); err != nil {
		return nil, err
	}
	notes, err := s.notes.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list clinical notes by patient: %w", err)
	}
	return s.assembleNotes(ctx, notes)
}

func (s *Service) assembleNotes(ctx context.Context, notes []ClinicalNote) ([]ClinicalNoteWithDetails, error) {
	out, err := s.assembler.ClinicalNotes(ctx, notes)
	if err != nil {
		return nil, fmt.Errorf("assemble clinical notes: %w", err)
	}
	return out, nil
}

// -- Prescriptions --

func (s *Service) ListPrescriptions(ctx context.Context, caller Caller) ([]PrescriptionWithDetails, error) {
	if err := caller.check(); err != nil {
		return nil, err
	}
	rxs, err := s.prescriptions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}
	return s.assemblePrescriptions(ctx, rxs)
}

func (s *Service) GetPrescription(ctx context.Context, caller Caller, id int64) (*PrescriptionWithDetails, error) {
	if err := caller.check(); err != nil {
		return nil, err
	}
	rx, err := s.prescriptions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get prescription: %w", err)
	}
	out, err := s.assemblePrescriptions(ctx, []Prescription{*rx})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *Service) CreatePrescription(ctx context.Context, caller Caller, in NewPrescription) (*Prescription, error) {
	if err := caller.check(); err != nil {
		return nil, err
	}
	if in.DoctorID == "" {
		in.DoctorID = caller.UserID
	}
	rx, err := s.prescriptions.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create prescription: %w", err)
	}
	return rx, nil
}

func (s *Service) UpdatePrescription(ctx context.Context, caller Caller, id int64, patch PrescriptionPatch) (*Prescription, error) {
	if err := caller.check(); err != nil {
		return nil, err
	}
	rx, err := s.prescriptions.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update prescription: %w", err)
	}
	return rx, nil
}

func (s *Service) DeletePrescription(ctx context.Context, caller Caller, id int64) error {
	if err := caller.check(); err != nil {
		return err
	}
	if err := s.prescriptions.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete prescription: %w", err)
	}
	return nil
}

func (s *Service) ListPrescriptionsByPatient(ctx context.Context, caller Caller, patientID int64) ([]PrescriptionWithDetails, error) {
	if err := caller.check(); err != nil {
		return nil, err
	}
	rxs, err := s.prescriptions.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list prescriptions by patient: %w", err)
	}
	return s.assemblePrescriptions(ctx, rxs)
}

func (s *Service) assemblePrescriptions(ctx context.Context, rxs []Prescription) ([]PrescriptionWithDetails, error) {
	out, err := s.assembler.Prescriptions(ctx, rxs)
	if err != nil {
		return nil, fmt.Errorf("assemble prescriptions: %w", err)
	}
	return out, nil
}

// -- Dashboard --

// DashboardMetrics counts today's appointments, active patients and notes
// typed "pending-report". MonthlyRevenue is a configured placeholder, not
// derived from stored data.
func (s *Service) DashboardMetrics(ctx context.Context, caller Caller) (*DashboardMetrics, error) {
	if err := caller.check(); err != nil {
		return nil, err
	}

	today, err := s.appointments.CountByDate(ctx, s.Today())
	if err != nil {
		return nil, fmt.Errorf("count today's appointments: %w", err)
	}
	active, err := s.patients.CountByStatus(ctx, PatientActive)
	if err != nil {
		return nil, fmt.Errorf("count active patients: %w", err)
	}
	pending, err := s.notes.CountByType(ctx, NotePendingReport)
	if err != nil {
		return nil, fmt.Errorf("count pending reports: %w", err)
	}

	return &DashboardMetrics{
		TodayAppointments: today,
		ActivePatients:    active,
		PendingReports:    pending,
		MonthlyRevenue:    s.monthlyRevenue,
	}, nil
}
