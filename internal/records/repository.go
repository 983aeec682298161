package records

import (
	"context"
	"errors"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrPatientNotFound      = errors.New("patient not found")
	ErrAppointmentNotFound  = errors.New("appointment not found")
	ErrClinicalNoteNotFound = errors.New("clinical note not found")
	ErrPrescriptionNotFound = errors.New("prescription not found")

	ErrInvalidReference = errors.New("referenced patient, doctor or appointment does not exist")
	ErrDuplicateEmail   = errors.New("email is already in use")
	ErrHasDependents    = errors.New("record is still referenced by other records")
)

// Each repository touches exactly one table. Get returns the entity's
// NotFound error; Update returns it when the id is unknown; Delete of an
// unknown id is a no-op. List results are ordered as documented per method.

type UserRepository interface {
	Get(ctx context.Context, id string) (*User, error)
	GetMany(ctx context.Context, ids []string) (map[string]*User, error)
	Upsert(ctx context.Context, profile UserProfile) (*User, error)
	Create(ctx context.Context, id string, staff NewStaff) (*User, error)
	Update(ctx context.Context, id string, patch UserPatch) (*User, error)
	Delete(ctx context.Context, id string) error
	// List orders by last name, then first name.
	List(ctx context.Context) ([]User, error)
}

type PatientRepository interface {
	Get(ctx context.Context, id int64) (*Patient, error)
	GetMany(ctx context.Context, ids []int64) (map[int64]*Patient, error)
	Create(ctx context.Context, p NewPatient) (*Patient, error)
	Update(ctx context.Context, id int64, patch PatientPatch) (*Patient, error)
	Delete(ctx context.Context, id int64) error
	// List and Search order by creation time, newest first.
	List(ctx context.Context) ([]Patient, error)
	Search(ctx context.Context, query string) ([]Patient, error)
	CountByStatus(ctx context.Context, status PatientStatus) (int, error)
}

type AppointmentRepository interface {
	Get(ctx context.Context, id int64) (*Appointment, error)
	GetMany(ctx context.Context, ids []int64) (map[int64]*Appointment, error)
	Create(ctx context.Context, a NewAppointment) (*Appointment, error)
	Update(ctx context.Context, id int64, patch AppointmentPatch) (*Appointment, error)
	Delete(ctx context.Context, id int64) error
	// List and ListByDoctor order by date then time, latest first.
	List(ctx context.Context) ([]Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]Appointment, error)
	// ListByDate orders by time, earliest first.
	ListByDate(ctx context.Context, date string) ([]Appointment, error)
	CountByDate(ctx context.Context, date string) (int, error)
}

type ClinicalNoteRepository interface {
	Get(ctx context.Context, id int64) (*ClinicalNote, error)
	Create(ctx context.Context, n NewClinicalNote) (*ClinicalNote, error)
	Update(ctx context.Context, id int64, patch ClinicalNotePatch) (*ClinicalNote, error)
	Delete(ctx context.Context, id int64) error
	// List and ListByPatient order by creation time, newest first.
	List(ctx context.Context) ([]ClinicalNote, error)
	ListByPatient(ctx context.Context, patientID int64) ([]ClinicalNote, error)
	CountByType(ctx context.Context, noteType string) (int, error)
}

type PrescriptionRepository interface {
	Get(ctx context.Context, id int64) (*Prescription, error)
	Create(ctx context.Context, rx NewPrescription) (*Prescription, error)
	Update(ctx context.Context, id int64, patch PrescriptionPatch) (*Prescription, error)
	Delete(ctx context.Context, id int64) error
	// List and ListByPatient order by creation time, newest first.
	List(ctx context.Context) ([]Prescription, error)
	ListByPatient(ctx context.Context, patientID int64) ([]Prescription, error)
}

// Repositories bundles one repository per entity.
type Repositories struct {
	Users         UserRepository
	Patients      PatientRepository
	Appointments  AppointmentRepository
	Notes         ClinicalNoteRepository
	Prescriptions PrescriptionRepository
}

func (n NewPatient) withDefaults() NewPatient {
	if n.Status == "" {
		n.Status = PatientActive
	}
	return n
}

func (n NewAppointment) withDefaults() NewAppointment {
	if n.Status == "" {
		n.Status = AppointmentScheduled
	}
	if n.Duration == "" {
		n.Duration = DefaultAppointmentDuration
	}
	return n
}

func (n NewPrescription) withDefaults() NewPrescription {
	if n.Status == "" {
		n.Status = PrescriptionActive
	}
	if n.RefillsRemaining == nil {
		n.RefillsRemaining = ptr(0)
	}
	return n
}

func (p UserProfile) role() Role {
	if p.Role == nil || *p.Role == "" {
		return RoleDoctor
	}
	return *p.Role
}
