package records

import "fmt"

type Role string

const (
	RoleDoctor Role = "doctor"
	RoleNurse  Role = "nurse"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleDoctor, RoleNurse, RoleAdmin:
		return true
	}
	return false
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid role %q", s)
	}
	return r, nil
}

type PatientStatus string

const (
	PatientActive   PatientStatus = "active"
	PatientInactive PatientStatus = "inactive"
	PatientFollowUp PatientStatus = "follow-up"
)

func (s PatientStatus) Valid() bool {
	switch s {
	case PatientActive, PatientInactive, PatientFollowUp:
		return true
	}
	return false
}

func ParsePatientStatus(s string) (PatientStatus, error) {
	st := PatientStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid patient status %q", s)
	}
	return st, nil
}

type AppointmentStatus string

const (
	AppointmentScheduled  AppointmentStatus = "scheduled"
	AppointmentConfirmed  AppointmentStatus = "confirmed"
	AppointmentInProgress AppointmentStatus = "in-progress"
	AppointmentCompleted  AppointmentStatus = "completed"
	AppointmentCancelled  AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentScheduled, AppointmentConfirmed, AppointmentInProgress,
		AppointmentCompleted, AppointmentCancelled:
		return true
	}
	return false
}

func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	st := AppointmentStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid appointment status %q", s)
	}
	return st, nil
}

type PrescriptionStatus string

const (
	PrescriptionActive       PrescriptionStatus = "active"
	PrescriptionCompleted    PrescriptionStatus = "completed"
	PrescriptionDiscontinued PrescriptionStatus = "discontinued"
)

func (s PrescriptionStatus) Valid() bool {
	switch s {
	case PrescriptionActive, PrescriptionCompleted, PrescriptionDiscontinued:
		return true
	}
	return false
}

func ParsePrescriptionStatus(s string) (PrescriptionStatus, error) {
	st := PrescriptionStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid prescription status %q", s)
	}
	return st, nil
}

// Known clinical note types. The column is free text; these are the values
// the clinic UI offers plus the one the dashboard counts.
const (
	NoteProgress      = "progress-note"
	NoteDiagnosis     = "diagnosis"
	NoteTreatmentPlan = "treatment-plan"
	NoteLabResults    = "lab-results"
	NoteConsultation  = "consultation"
	NotePendingReport = "pending-report"
)

const DefaultAppointmentDuration = "30"

// StaffIDPrefix marks accounts an admin created before the person's first
// login. The first login with a matching email takes the row over.
const StaffIDPrefix = "staff-"
