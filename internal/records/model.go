package records

import "time"

// User is a staff account. Its id comes from the external identity provider
// (or "staff-<uuid>" when an admin adds someone before their first login).
type User struct {
	ID              string    `json:"id"`
	Email           *string   `json:"email"`
	FirstName       *string   `json:"firstName"`
	LastName        *string   `json:"lastName"`
	ProfileImageURL *string   `json:"profileImageUrl"`
	Role            Role      `json:"role"`
	Specialty       *string   `json:"specialty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type Patient struct {
	ID               int64         `json:"id"`
	FirstName        string        `json:"firstName"`
	LastName         string        `json:"lastName"`
	Email            *string       `json:"email"`
	Phone            *string       `json:"phone"`
	DateOfBirth      *string       `json:"dateOfBirth"` // YYYY-MM-DD
	Gender           *string       `json:"gender"`
	Address          *string       `json:"address"`
	EmergencyContact *string       `json:"emergencyContact"`
	EmergencyPhone   *string       `json:"emergencyPhone"`
	MedicalHistory   *string       `json:"medicalHistory"`
	Allergies        *string       `json:"allergies"`
	Medications      *string       `json:"medications"`
	Status           PatientStatus `json:"status"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

type Appointment struct {
	ID        int64             `json:"id"`
	PatientID int64             `json:"patientId"`
	DoctorID  string            `json:"doctorId"`
	Date      string            `json:"date"` // YYYY-MM-DD
	Time      string            `json:"time"` // HH:MM
	Type      string            `json:"type"`
	Status    AppointmentStatus `json:"status"`
	Notes     *string           `json:"notes"`
	Duration  string            `json:"duration"` // minutes
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

type ClinicalNote struct {
	ID            int64     `json:"id"`
	PatientID     int64     `json:"patientId"`
	DoctorID      string    `json:"doctorId"`
	AppointmentID *int64    `json:"appointmentId"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Type          string    `json:"type"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Prescription struct {
	ID               int64              `json:"id"`
	PatientID        int64              `json:"patientId"`
	DoctorID         string             `json:"doctorId"`
	AppointmentID    *int64             `json:"appointmentId"`
	MedicationName   string             `json:"medicationName"`
	Dosage           string             `json:"dosage"`
	Frequency        string             `json:"frequency"`
	Duration         string             `json:"duration"`
	Instructions     *string            `json:"instructions"`
	Status           PrescriptionStatus `json:"status"`
	StartDate        string             `json:"startDate"`
	EndDate          *string            `json:"endDate"`
	RefillsRemaining int                `json:"refillsRemaining"`
	PharmacyNotes    *string            `json:"pharmacyNotes"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

// Read models, assembled at query time.

type AppointmentWithPatient struct {
	Appointment
	Patient *Patient `json:"patient"`
	Doctor  *User    `json:"doctor"`
}

type ClinicalNoteWithDetails struct {
	ClinicalNote
	Patient     *Patient     `json:"patient"`
	Doctor      *User        `json:"doctor"`
	Appointment *Appointment `json:"appointment,omitempty"`
}

type PrescriptionWithDetails struct {
	Prescription
	Patient     *Patient     `json:"patient"`
	Doctor      *User        `json:"doctor"`
	Appointment *Appointment `json:"appointment,omitempty"`
}

type DashboardMetrics struct {
	TodayAppointments int     `json:"todayAppointments"`
	ActivePatients    int     `json:"activePatients"`
	PendingReports    int     `json:"pendingReports"`
	MonthlyRevenue    float64 `json:"monthlyRevenue"`
}
