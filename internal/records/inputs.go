package records

// Insert payloads carry caller-supplied fields only; ids and timestamps are
// assigned by the store. Patch payloads use nil for "not supplied".

type UserProfile struct {
	ID              string
	Email           *string
	FirstName       *string
	LastName        *string
	ProfileImageURL *string
	Role            *Role
	Specialty       *string
}

type UserPatch struct {
	Email           *string
	FirstName       *string
	LastName        *string
	ProfileImageURL *string
	Role            *Role
	Specialty       *string
}

func (p UserPatch) apply(u *User) {
	setPtr(&u.Email, p.Email)
	setPtr(&u.FirstName, p.FirstName)
	setPtr(&u.LastName, p.LastName)
	setPtr(&u.ProfileImageURL, p.ProfileImageURL)
	setVal(&u.Role, p.Role)
	setPtr(&u.Specialty, p.Specialty)
}

type NewPatient struct {
	FirstName        string
	LastName         string
	Email            *string
	Phone            *string
	DateOfBirth      *string
	Gender           *string
	Address          *string
	EmergencyContact *string
	EmergencyPhone   *string
	MedicalHistory   *string
	Allergies        *string
	Medications      *string
	Status           PatientStatus // empty means active
}

type PatientPatch struct {
	FirstName        *string
	LastName         *string
	Email            *string
	Phone            *string
	DateOfBirth      *string
	Gender           *string
	Address          *string
	EmergencyContact *string
	EmergencyPhone   *string
	MedicalHistory   *string
	Allergies        *string
	Medications      *string
	Status           *PatientStatus
}

func (p PatientPatch) apply(pt *Patient) {
	setVal(&pt.FirstName, p.FirstName)
	setVal(&pt.LastName, p.LastName)
	setPtr(&pt.Email, p.Email)
	setPtr(&pt.Phone, p.Phone)
	setPtr(&pt.DateOfBirth, p.DateOfBirth)
	setPtr(&pt.Gender, p.Gender)
	setPtr(&pt.Address, p.Address)
	setPtr(&pt.EmergencyContact, p.EmergencyContact)
	setPtr(&pt.EmergencyPhone, p.EmergencyPhone)
	setPtr(&pt.MedicalHistory, p.MedicalHistory)
	setPtr(&pt.Allergies, p.Allergies)
	setPtr(&pt.Medications, p.Medications)
	setVal(&pt.Status, p.Status)
}

type NewAppointment struct {
	PatientID int64
	DoctorID  string
	Date      string
	Time      string
	Type      string
	Status    AppointmentStatus // empty means scheduled
	Notes     *string
	Duration  string // empty means DefaultAppointmentDuration
}

type AppointmentPatch struct {
	PatientID *int64
	DoctorID  *string
	Date      *string
	Time      *string
	Type      *string
	Status    *AppointmentStatus
	Notes     *string
	Duration  *string
}

func (p AppointmentPatch) apply(a *Appointment) {
	setVal(&a.PatientID, p.PatientID)
	setVal(&a.DoctorID, p.DoctorID)
	setVal(&a.Date, p.Date)
	setVal(&a.Time, p.Time)
	setVal(&a.Type, p.Type)
	setVal(&a.Status, p.Status)
	setPtr(&a.Notes, p.Notes)
	setVal(&a.Duration, p.Duration)
}

type NewClinicalNote struct {
	PatientID     int64
	DoctorID      string
	AppointmentID *int64
	Title         string
	Content       string
	Type          string
}

type ClinicalNotePatch struct {
	PatientID     *int64
	DoctorID      *string
	AppointmentID *int64
	Title         *string
	Content       *string
	Type          *string
}

func (p ClinicalNotePatch) apply(n *ClinicalNote) {
	setVal(&n.PatientID, p.PatientID)
	setVal(&n.DoctorID, p.DoctorID)
	setPtr(&n.AppointmentID, p.AppointmentID)
	setVal(&n.Title, p.Title)
	setVal(&n.Content, p.Content)
	setVal(&n.Type, p.Type)
}

type NewPrescription struct {
	PatientID        int64
	DoctorID         string
	AppointmentID    *int64
	MedicationName   string
	Dosage           string
	Frequency        string
	Duration         string
	Instructions     *string
	Status           PrescriptionStatus // empty means active
	StartDate        string
	EndDate          *string
	RefillsRemaining *int // nil means 0
	PharmacyNotes    *string
}

type PrescriptionPatch struct {
	PatientID        *int64
	DoctorID         *string
	AppointmentID    *int64
	MedicationName   *string
	Dosage           *string
	Frequency        *string
	Duration         *string
	Instructions     *string
	Status           *PrescriptionStatus
	StartDate        *string
	EndDate          *string
	RefillsRemaining *int
	PharmacyNotes    *string
}

func (p PrescriptionPatch) apply(rx *Prescription) {
	setVal(&rx.PatientID, p.PatientID)
	setVal(&rx.DoctorID, p.DoctorID)
	setPtr(&rx.AppointmentID, p.AppointmentID)
	setVal(&rx.MedicationName, p.MedicationName)
	setVal(&rx.Dosage, p.Dosage)
	setVal(&rx.Frequency, p.Frequency)
	setVal(&rx.Duration, p.Duration)
	setPtr(&rx.Instructions, p.Instructions)
	setVal(&rx.Status, p.Status)
	setVal(&rx.StartDate, p.StartDate)
	setPtr(&rx.EndDate, p.EndDate)
	setVal(&rx.RefillsRemaining, p.RefillsRemaining)
	setPtr(&rx.PharmacyNotes, p.PharmacyNotes)
}

type NewStaff struct {
	FirstName string
	LastName  string
	Email     string
	Role      Role
	Specialty *string
}

func setVal[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setPtr[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func ptr[T any](v T) *T {
	return &v
}
