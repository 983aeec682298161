package records

import (
	"context"
	"errors"
	"fmt"
)

// ErrInconsistentReadModel means a stored row references a patient, user or
// appointment that could not be loaded. Foreign keys should make this
// impossible, so the whole read fails instead of returning a partial join.
var ErrInconsistentReadModel = errors.New("read model references a missing record")

// Assembler builds the denormalized read models from the single-entity
// repositories. Every call loads the primary rows first, then fetches each
// kind of related row in one batch.
type Assembler struct {
	users        UserRepository
	patients     PatientRepository
	appointments AppointmentRepository
}

func NewAssembler(repos Repositories) *Assembler {
	return &Assembler{
		users:        repos.Users,
		patients:     repos.Patients,
		appointments: repos.Appointments,
	}
}

// related holds the rows a batch of primary records points at.
type related struct {
	patients     map[int64]*Patient
	users        map[string]*User
	appointments map[int64]*Appointment
}

type refs struct {
	patientIDs     []int64
	doctorIDs      []string
	appointmentIDs []int64
	seenPatient    map[int64]bool
	seenDoctor     map[string]bool
	seenAppt       map[int64]bool
}

func newRefs() *refs {
	return &refs{
		seenPatient: map[int64]bool{},
		seenDoctor:  map[string]bool{},
		seenAppt:    map[int64]bool{},
	}
}

func (r *refs) add(patientID int64, doctorID string, appointmentID *int64) {
	if !r.seenPatient[patientID] {
		r.seenPatient[patientID] = true
		r.patientIDs = append(r.patientIDs, patientID)
	}
	if !r.seenDoctor[doctorID] {
		r.seenDoctor[doctorID] = true
		r.doctorIDs = append(r.doctorIDs, doctorID)
	}
	if appointmentID != nil && !r.seenAppt[*appointmentID] {
		r.seenAppt[*appointmentID] = true
		r.appointmentIDs = append(r.appointmentIDs, *appointmentID)
	}
}

func (a *Assembler) load(ctx context.Context, r *refs) (*related, error) {
	out := &related{
		patients:     map[int64]*Patient{},
		users:        map[string]*User{},
		appointments: map[int64]*Appointment{},
	}

	var err error
	if len(r.patientIDs) > 0 {
		if out.patients, err = a.patients.GetMany(ctx, r.patientIDs); err != nil {
			return nil, fmt.Errorf("load patients: %w", err)
		}
	}
	if len(r.doctorIDs) > 0 {
		if out.users, err = a.users.GetMany(ctx, r.doctorIDs); err != nil {
			return nil, fmt.Errorf("load doctors: %w", err)
		}
	}
	if len(r.appointmentIDs) > 0 {
		if out.appointments, err = a.appointments.GetMany(ctx, r.appointmentIDs); err != nil {
			return nil, fmt.Errorf("load appointments: %w", err)
		}
	}

	return out, nil
}

func (rel *related) embed(patientID int64, doctorID string, appointmentID *int64) (*Patient, *User, *Appointment, error) {
	p, ok := rel.patients[patientID]
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: patient %d", ErrInconsistentReadModel, patientID)
	}
	u, ok := rel.users[doctorID]
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: doctor %s", ErrInconsistentReadModel, doctorID)
	}
	if appointmentID == nil {
		return p, u, nil, nil
	}
	appt, ok := rel.appointments[*appointmentID]
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: appointment %d", ErrInconsistentReadModel, *appointmentID)
	}
	return p, u, appt, nil
}

func (a *Assembler) Appointments(ctx context.Context, appts []Appointment) ([]AppointmentWithPatient, error) {
	r := newRefs()
	for _, appt := range appts {
		r.add(appt.PatientID, appt.DoctorID, nil)
	}
	rel, err := a.load(ctx, r)
	if err != nil {
		return nil, err
	}

	out := make([]AppointmentWithPatient, 0, len(appts))
	for _, appt := range appts {
		p, u, _, err := rel.embed(appt.PatientID, appt.DoctorID, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, AppointmentWithPatient{Appointment: appt, Patient: p, Doctor: u})
	}
	return out, nil
}

func (a *Assembler) ClinicalNotes(ctx context.Context, notes []ClinicalNote) ([]ClinicalNoteWithDetails, error) {
	r := newRefs()
	for _, n := range notes {
		r.add(n.PatientID, n.DoctorID, n.AppointmentID)
	}
	rel, err := a.load(ctx, r)
	if err != nil {
		return nil, err
	}

	out := make([]ClinicalNoteWithDetails, 0, len(notes))
	for _, n := range notes {
		p, u, appt, err := rel.embed(n.PatientID, n.DoctorID, n.AppointmentID)
		if err != nil {
			return nil, err
		}
		out = append(out, ClinicalNoteWithDetails{ClinicalNote: n, Patient: p, Doctor: u, Appointment: appt})
	}
	return out, nil
}

func (a *Assembler) Prescriptions(ctx context.Context, rxs []Prescription) ([]PrescriptionWithDetails, error) {
	r := newRefs()
	for _, rx := range rxs {
		r.add(rx.PatientID, rx.DoctorID, rx.AppointmentID)
	}
	rel, err := a.load(ctx, r)
	if err != nil {
		return nil, err
	}

	out := make([]PrescriptionWithDetails, 0, len(rxs))
	for _, rx := range rxs {
		p, u, appt, err := rel.embed(rx.PatientID, rx.DoctorID, rx.AppointmentID)
		if err != nil {
			return nil, err
		}
		out = append(out, PrescriptionWithDetails{Prescription: rx, Patient: p, Doctor: u, Appointment: appt})
	}
	return out, nil
}
