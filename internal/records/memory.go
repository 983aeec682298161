package records

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// memoryStore keeps every table in process. It enforces the same foreign
// key, uniqueness and restrict-on-delete rules as the Postgres schema.
type memoryStore struct {
	mu   sync.RWMutex
	now  func() time.Time
	last time.Time

	users         map[string]User
	patients      map[int64]Patient
	appointments  map[int64]Appointment
	notes         map[int64]ClinicalNote
	prescriptions map[int64]Prescription

	patientSeq, appointmentSeq, noteSeq, prescriptionSeq int64
}

// NewMemoryRepositories returns repositories backed by process memory.
func NewMemoryRepositories() Repositories {
	return newMemoryRepositories(time.Now)
}

func newMemoryRepositories(now func() time.Time) Repositories {
	s := &memoryStore{
		now:           now,
		users:         make(map[string]User),
		patients:      make(map[int64]Patient),
		appointments:  make(map[int64]Appointment),
		notes:         make(map[int64]ClinicalNote),
		prescriptions: make(map[int64]Prescription),
	}
	return Repositories{
		Users:         &memUsers{s},
		Patients:      &memPatients{s},
		Appointments:  &memAppointments{s},
		Notes:         &memNotes{s},
		Prescriptions: &memPrescriptions{s},
	}
}

// tick returns a timestamp strictly after the previous one, at the
// microsecond precision Postgres stores.
func (s *memoryStore) tick() time.Time {
	t := s.now().Truncate(time.Microsecond)
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

// checkRefs must be called with the lock held.
func (s *memoryStore) checkRefs(patientID int64, doctorID string, appointmentID *int64) error {
	if _, ok := s.patients[patientID]; !ok {
		return ErrInvalidReference
	}
	if _, ok := s.users[doctorID]; !ok {
		return ErrInvalidReference
	}
	if appointmentID != nil {
		if _, ok := s.appointments[*appointmentID]; !ok {
			return ErrInvalidReference
		}
	}
	return nil
}

func (s *memoryStore) emailTaken(email *string, exceptID string) bool {
	if email == nil {
		return false
	}
	for id, u := range s.users {
		if id != exceptID && u.Email != nil && *u.Email == *email {
			return true
		}
	}
	return false
}

// claimStaff re-keys a pre-created staff row with this email to id, carrying
// its doctor references along. Must be called with the lock held.
func (s *memoryStore) claimStaff(id string, email *string) {
	if email == nil {
		return
	}
	for oldID, u := range s.users {
		if !strings.HasPrefix(oldID, StaffIDPrefix) || u.Email == nil || *u.Email != *email {
			continue
		}

		delete(s.users, oldID)
		u.ID = id
		s.users[id] = u

		for k, a := range s.appointments {
			if a.DoctorID == oldID {
				a.DoctorID = id
				s.appointments[k] = a
			}
		}
		for k, n := range s.notes {
			if n.DoctorID == oldID {
				n.DoctorID = id
				s.notes[k] = n
			}
		}
		for k, rx := range s.prescriptions {
			if rx.DoctorID == oldID {
				rx.DoctorID = id
				s.prescriptions[k] = rx
			}
		}
		return
	}
}

func newestFirst(ai, bi time.Time, aid, bid int64) bool {
	if !ai.Equal(bi) {
		return ai.After(bi)
	}
	return aid > bid
}

// Users

type memUsers struct{ s *memoryStore }

func (r *memUsers) Get(_ context.Context, id string) (*User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (r *memUsers) GetMany(_ context.Context, ids []string) (map[string]*User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[string]*User, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out[id] = &u
		}
	}
	return out, nil
}

func (r *memUsers) Upsert(_ context.Context, p UserProfile) (*User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[p.ID]; !ok {
		r.s.claimStaff(p.ID, p.Email)
	}
	if r.s.emailTaken(p.Email, p.ID) {
		return nil, ErrDuplicateEmail
	}

	now := r.s.tick()
	u, ok := r.s.users[p.ID]
	if !ok {
		u = User{ID: p.ID, Role: p.role(), CreatedAt: now}
	}
	UserPatch{
		Email:           p.Email,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		ProfileImageURL: p.ProfileImageURL,
		Role:            p.Role,
		Specialty:       p.Specialty,
	}.apply(&u)
	if u.Role == "" {
		u.Role = RoleDoctor
	}
	u.UpdatedAt = now

	r.s.users[u.ID] = u
	return &u, nil
}

func (r *memUsers) Create(_ context.Context, id string, staff NewStaff) (*User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; ok {
		return nil, ErrDuplicateEmail
	}
	if r.s.emailTaken(&staff.Email, id) {
		return nil, ErrDuplicateEmail
	}

	now := r.s.tick()
	u := User{
		ID:        id,
		Email:     ptr(staff.Email),
		FirstName: ptr(staff.FirstName),
		LastName:  ptr(staff.LastName),
		Role:      staff.Role,
		Specialty: staff.Specialty,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.users[id] = u
	return &u, nil
}

func (r *memUsers) Update(_ context.Context, id string, p UserPatch) (*User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	if r.s.emailTaken(p.Email, id) {
		return nil, ErrDuplicateEmail
	}

	p.apply(&u)
	u.UpdatedAt = r.s.tick()
	r.s.users[id] = u
	return &u, nil
}

func (r *memUsers) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, a := range r.s.appointments {
		if a.DoctorID == id {
			return ErrHasDependents
		}
	}
	for _, n := range r.s.notes {
		if n.DoctorID == id {
			return ErrHasDependents
		}
	}
	for _, rx := range r.s.prescriptions {
		if rx.DoctorID == id {
			return ErrHasDependents
		}
	}

	delete(r.s.users, id)
	return nil
}

func (r *memUsers) List(_ context.Context) ([]User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}

	deref := func(s *string) string {
		if s == nil {
			return "\uffff"
		}
		return *s
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := deref(out[i].LastName), deref(out[j].LastName)
		if li != lj {
			return li < lj
		}
		fi, fj := deref(out[i].FirstName), deref(out[j].FirstName)
		if fi != fj {
			return fi < fj
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Patients

type memPatients struct{ s *memoryStore }

func (r *memPatients) Get(_ context.Context, id int64) (*Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

func (r *memPatients) GetMany(_ context.Context, ids []int64) (map[int64]*Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[int64]*Patient, len(ids))
	for _, id := range ids {
		if p, ok := r.s.patients[id]; ok {
			out[id] = &p
		}
	}
	return out, nil
}

func (r *memPatients) Create(_ context.Context, in NewPatient) (*Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	in = in.withDefaults()
	r.s.patientSeq++
	now := r.s.tick()

	p := Patient{
		ID:               r.s.patientSeq,
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Email:            in.Email,
		Phone:            in.Phone,
		DateOfBirth:      in.DateOfBirth,
		Gender:           in.Gender,
		Address:          in.Address,
		EmergencyContact: in.EmergencyContact,
		EmergencyPhone:   in.EmergencyPhone,
		MedicalHistory:   in.MedicalHistory,
		Allergies:        in.Allergies,
		Medications:      in.Medications,
		Status:           in.Status,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	r.s.patients[p.ID] = p
	return &p, nil
}

func (r *memPatients) Update(_ context.Context, id int64, patch PatientPatch) (*Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}

	patch.apply(&p)
	p.UpdatedAt = r.s.tick()
	r.s.patients[id] = p
	return &p, nil
}

func (r *memPatients) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, a := range r.s.appointments {
		if a.PatientID == id {
			return ErrHasDependents
		}
	}
	for _, n := range r.s.notes {
		if n.PatientID == id {
			return ErrHasDependents
		}
	}
	for _, rx := range r.s.prescriptions {
		if rx.PatientID == id {
			return ErrHasDependents
		}
	}

	delete(r.s.patients, id)
	return nil
}

func (r *memPatients) List(_ context.Context) ([]Patient, error) {
	return r.filter(func(Patient) bool { return true }), nil
}

func (r *memPatients) Search(_ context.Context, query string) ([]Patient, error) {
	q := strings.ToLower(query)
	return r.filter(func(p Patient) bool {
		if strings.Contains(strings.ToLower(p.FirstName), q) ||
			strings.Contains(strings.ToLower(p.LastName), q) {
			return true
		}
		return p.Email != nil && strings.Contains(strings.ToLower(*p.Email), q)
	}), nil
}

func (r *memPatients) CountByStatus(_ context.Context, status PatientStatus) (int, error) {
	return len(r.filter(func(p Patient) bool { return p.Status == status })), nil
}

func (r *memPatients) filter(keep func(Patient) bool) []Patient {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []Patient{}
	for _, p := range r.s.patients {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}

// Appointments

type memAppointments struct{ s *memoryStore }

func (r *memAppointments) Get(_ context.Context, id int64) (*Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

func (r *memAppointments) GetMany(_ context.Context, ids []int64) (map[int64]*Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[int64]*Appointment, len(ids))
	for _, id := range ids {
		if a, ok := r.s.appointments[id]; ok {
			out[id] = &a
		}
	}
	return out, nil
}

func (r *memAppointments) Create(_ context.Context, in NewAppointment) (*Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.checkRefs(in.PatientID, in.DoctorID, nil); err != nil {
		return nil, err
	}

	in = in.withDefaults()
	r.s.appointmentSeq++
	now := r.s.tick()

	a := Appointment{
		ID:        r.s.appointmentSeq,
		PatientID: in.PatientID,
		DoctorID:  in.DoctorID,
		Date:      in.Date,
		Time:      in.Time,
		Type:      in.Type,
		Status:    in.Status,
		Notes:     in.Notes,
		Duration:  in.Duration,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.appointments[a.ID] = a
	return &a, nil
}

func (r *memAppointments) Update(_ context.Context, id int64, patch AppointmentPatch) (*Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}

	patch.apply(&a)
	if err := r.s.checkRefs(a.PatientID, a.DoctorID, nil); err != nil {
		return nil, err
	}
	a.UpdatedAt = r.s.tick()
	r.s.appointments[id] = a
	return &a, nil
}

func (r *memAppointments) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, n := range r.s.notes {
		if n.AppointmentID != nil && *n.AppointmentID == id {
			return ErrHasDependents
		}
	}
	for _, rx := range r.s.prescriptions {
		if rx.AppointmentID != nil && *rx.AppointmentID == id {
			return ErrHasDependents
		}
	}

	delete(r.s.appointments, id)
	return nil
}

func latestFirst(a, b Appointment) bool {
	if a.Date != b.Date {
		return a.Date > b.Date
	}
	if a.Time != b.Time {
		return a.Time > b.Time
	}
	return a.ID > b.ID
}

func (r *memAppointments) List(_ context.Context) ([]Appointment, error) {
	return r.filter(func(Appointment) bool { return true }, latestFirst), nil
}

func (r *memAppointments) ListByDoctor(_ context.Context, doctorID string) ([]Appointment, error) {
	return r.filter(func(a Appointment) bool { return a.DoctorID == doctorID }, latestFirst), nil
}

func (r *memAppointments) ListByDate(_ context.Context, date string) ([]Appointment, error) {
	return r.filter(func(a Appointment) bool { return a.Date == date }, func(a, b Appointment) bool {
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.ID < b.ID
	}), nil
}

func (r *memAppointments) CountByDate(ctx context.Context, date string) (int, error) {
	appts, _ := r.ListByDate(ctx, date)
	return len(appts), nil
}

func (r *memAppointments) filter(keep func(Appointment) bool, less func(a, b Appointment) bool) []Appointment {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []Appointment{}
	for _, a := range r.s.appointments {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Clinical notes

type memNotes struct{ s *memoryStore }

func (r *memNotes) Get(_ context.Context, id int64) (*ClinicalNote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n, ok := r.s.notes[id]
	if !ok {
		return nil, ErrClinicalNoteNotFound
	}
	return &n, nil
}

func (r *memNotes) Create(_ context.Context, in NewClinicalNote) (*ClinicalNote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.checkRefs(in.PatientID, in.DoctorID, in.AppointmentID); err != nil {
		return nil, err
	}

	r.s.noteSeq++
	now := r.s.tick()

	n := ClinicalNote{
		ID:            r.s.noteSeq,
		PatientID:     in.PatientID,
		DoctorID:      in.DoctorID,
		AppointmentID: in.AppointmentID,
		Title:         in.Title,
		Content:       in.Content,
		Type:          in.Type,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.s.notes[n.ID] = n
	return &n, nil
}

func (r *memNotes) Update(_ context.Context, id int64, patch ClinicalNotePatch) (*ClinicalNote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notes[id]
	if !ok {
		return nil, ErrClinicalNoteNotFound
	}

	patch.apply(&n)
	if err := r.s.checkRefs(n.PatientID, n.DoctorID, n.AppointmentID); err != nil {
		return nil, err
	}
	n.UpdatedAt = r.s.tick()
	r.s.notes[id] = n
	return &n, nil
}

func (r *memNotes) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.notes, id)
	return nil
}

func (r *memNotes) List(_ context.Context) ([]ClinicalNote, error) {
	return r.filter(func(ClinicalNote) bool { return true }), nil
}

func (r *memNotes) ListByPatient(_ context.Context, patientID int64) ([]ClinicalNote, error) {
	return r.filter(func(n ClinicalNote) bool { return n.PatientID == patientID }), nil
}

func (r *memNotes) CountByType(_ context.Context, noteType string) (int, error) {
	return len(r.filter(func(n ClinicalNote) bool { return n.Type == noteType })), nil
}

func (r *memNotes) filter(keep func(ClinicalNote) bool) []ClinicalNote {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []ClinicalNote{}
	for _, n := range r.s.notes {
		if keep(n) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}

// Prescriptions

type memPrescriptions struct{ s *memoryStore }

func (r *memPrescriptions) Get(_ context.Context, id int64) (*Prescription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rx, ok := r.s.prescriptions[id]
	if !ok {
		return nil, ErrPrescriptionNotFound
	}
	return &rx, nil
}

func (r *memPrescriptions) Create(_ context.Context, in NewPrescription) (*Prescription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.checkRefs(in.PatientID, in.DoctorID, in.AppointmentID); err != nil {
		return nil, err
	}

	in = in.withDefaults()
	r.s.prescriptionSeq++
	now := r.s.tick()

	rx := Prescription{
		ID:               r.s.prescriptionSeq,
		PatientID:        in.PatientID,
		DoctorID:         in.DoctorID,
		AppointmentID:    in.AppointmentID,
		MedicationName:   in.MedicationName,
		Dosage:           in.Dosage,
		Frequency:        in.Frequency,
		Duration:         in.Duration,
		Instructions:     in.Instructions,
		Status:           in.Status,
		StartDate:        in.StartDate,
		EndDate:          in.EndDate,
		RefillsRemaining: *in.RefillsRemaining,
		PharmacyNotes:    in.PharmacyNotes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	r.s.prescriptions[rx.ID] = rx
	return &rx, nil
}

func (r *memPrescriptions) Update(_ context.Context, id int64, patch PrescriptionPatch) (*Prescription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rx, ok := r.s.prescriptions[id]
	if !ok {
		return nil, ErrPrescriptionNotFound
	}

	patch.apply(&rx)
	if err := r.s.checkRefs(rx.PatientID, rx.DoctorID, rx.AppointmentID); err != nil {
		return nil, err
	}
	rx.UpdatedAt = r.s.tick()
	r.s.prescriptions[id] = rx
	return &rx, nil
}

func (r *memPrescriptions) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.prescriptions, id)
	return nil
}

func (r *memPrescriptions) List(_ context.Context) ([]Prescription, error) {
	return r.filter(func(Prescription) bool { return true }), nil
}

func (r *memPrescriptions) ListByPatient(_ context.Context, patientID int64) ([]Prescription, error) {
	return r.filter(func(rx Prescription) bool { return rx.PatientID == patientID }), nil
}

func (r *memPrescriptions) filter(keep func(Prescription) bool) []Prescription {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []Prescription{}
	for _, rx := range r.s.prescriptions {
		if keep(rx) {
			out = append(out, rx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}
