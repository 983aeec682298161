package api

import "github.com/HouseOfSounds/VitaeEMR/internal/records"

// Request bodies. Update bodies use pointers so only supplied fields are
// validated and applied.

type LoginRequest struct {
	Assertion string `json:"assertion" validate:"required"`
}

type CreatePatientRequest struct {
	FirstName        string  `json:"firstName" validate:"required"`
	LastName         string  `json:"lastName" validate:"required"`
	Email            *string `json:"email" validate:"omitempty,email"`
	Phone            *string `json:"phone"`
	DateOfBirth      *string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Gender           *string `json:"gender"`
	Address          *string `json:"address"`
	EmergencyContact *string `json:"emergencyContact"`
	EmergencyPhone   *string `json:"emergencyPhone"`
	MedicalHistory   *string `json:"medicalHistory"`
	Allergies        *string `json:"allergies"`
	Medications      *string `json:"medications"`
	Status           string  `json:"status" validate:"omitempty,oneof=active inactive follow-up"`
}

func (r CreatePatientRequest) toInput() records.NewPatient {
	return records.NewPatient{
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		Email:            r.Email,
		Phone:            r.Phone,
		DateOfBirth:      r.DateOfBirth,
		Gender:           r.Gender,
		Address:          r.Address,
		EmergencyContact: r.EmergencyContact,
		EmergencyPhone:   r.EmergencyPhone,
		MedicalHistory:   r.MedicalHistory,
		Allergies:        r.Allergies,
		Medications:      r.Medications,
		Status:           records.PatientStatus(r.Status),
	}
}

type UpdatePatientRequest struct {
	FirstName        *string `json:"firstName" validate:"omitempty,min=1"`
	LastName         *string `json:"lastName" validate:"omitempty,min=1"`
	Email            *string `json:"email" validate:"omitempty,email"`
	Phone            *string `json:"phone"`
	DateOfBirth      *string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Gender           *string `json:"gender"`
	Address          *string `json:"address"`
	EmergencyContact *string `json:"emergencyContact"`
	EmergencyPhone   *string `json:"emergencyPhone"`
	MedicalHistory   *string `json:"medicalHistory"`
	Allergies        *string `json:"allergies"`
	Medications      *string `json:"medications"`
	Status           *string `json:"status" validate:"omitempty,oneof=active inactive follow-up"`
}

func (r UpdatePatientRequest) toPatch() records.PatientPatch {
	return records.PatientPatch{
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		Email:            r.Email,
		Phone:            r.Phone,
		DateOfBirth:      r.DateOfBirth,
		Gender:           r.Gender,
		Address:          r.Address,
		EmergencyContact: r.EmergencyContact,
		EmergencyPhone:   r.EmergencyPhone,
		MedicalHistory:   r.MedicalHistory,
		Allergies:        r.Allergies,
		Medications:      r.Medications,
		Status:           variant[records.PatientStatus](r.Status),
	}
}

type CreateAppointmentRequest struct {
	PatientID int64   `json:"patientId" validate:"required,gt=0"`
	DoctorID  string  `json:"doctorId"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string  `json:"time" validate:"required,datetime=15:04"`
	Type      string  `json:"type" validate:"required"`
	Status    string  `json:"status" validate:"omitempty,oneof=scheduled confirmed in-progress completed cancelled"`
	Notes     *string `json:"notes"`
	Duration  string  `json:"duration" validate:"omitempty,number"`
}

func (r CreateAppointmentRequest) toInput() records.NewAppointment {
	return records.NewAppointment{
		PatientID: r.PatientID,
		DoctorID:  r.DoctorID,
		Date:      r.Date,
		Time:      r.Time,
		Type:      r.Type,
		Status:    records.AppointmentStatus(r.Status),
		Notes:     r.Notes,
		Duration:  r.Duration,
	}
}

type UpdateAppointmentRequest struct {
	PatientID *int64  `json:"patientId" validate:"omitempty,gt=0"`
	DoctorID  *string `json:"doctorId" validate:"omitempty,min=1"`
	Date      *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time      *string `json:"time" validate:"omitempty,datetime=15:04"`
	Type      *string `json:"type" validate:"omitempty,min=1"`
	Status    *string `json:"status" validate:"omitempty,oneof=scheduled confirmed in-progress completed cancelled"`
	Notes     *string `json:"notes"`
	Duration  *string `json:"duration" validate:"omitempty,number"`
}

func (r UpdateAppointmentRequest) toPatch() records.AppointmentPatch {
	return records.AppointmentPatch{
		PatientID: r.PatientID,
		DoctorID:  r.DoctorID,
		Date:      r.Date,
		Time:      r.Time,
		Type:      r.Type,
		Status:    variant[records.AppointmentStatus](r.Status),
		Notes:     r.Notes,
		Duration:  r.Duration,
	}
}

type CreateClinicalNoteRequest struct {
	PatientID     int64  `json:"patientId" validate:"required,gt=0"`
	DoctorID      string `json:"doctorId"`
	AppointmentID *int64 `json:"appointmentId" validate:"omitempty,gt=0"`
	Title         string `json:"title" validate:"required"`
	Content       string `json:"content" validate:"required"`
	Type          string `json:"type" validate:"required"`
}

func (r CreateClinicalNoteRequest) toInput() records.NewClinicalNote {
	return records.NewClinicalNote{
		PatientID:     r.PatientID,
		DoctorID:      r.DoctorID,
		AppointmentID: r.AppointmentID,
		Title:         r.Title,
		Content:       r.Content,
		Type:          r.Type,
	}
}

type UpdateClinicalNoteRequest struct {
	PatientID     *int64  `json:"patientId" validate:"omitempty,gt=0"`
	DoctorID      *string `json:"doctorId" validate:"omitempty,min=1"`
	AppointmentID *int64  `json:"appointmentId" validate:"omitempty,gt=0"`
	Title         *string `json:"title" validate:"omitempty,min=1"`
	Content       *string `json:"content" validate:"omitempty,min=1"`
	Type          *string `json:"type" validate:"omitempty,min=1"`
}

func (r UpdateClinicalNoteRequest) toPatch() records.ClinicalNotePatch {
	return records.ClinicalNotePatch{
		PatientID:     r.PatientID,
		DoctorID:      r.DoctorID,
		AppointmentID: r.AppointmentID,
		Title:         r.Title,
		Content:       r.Content,
		Type:          r.Type,
	}
}

type CreatePrescriptionRequest struct {
	PatientID        int64   `json:"patientId" validate:"required,gt=0"`
	DoctorID         string  `json:"doctorId"`
	AppointmentID    *int64  `json:"appointmentId" validate:"omitempty,gt=0"`
	MedicationName   string  `json:"medicationName" validate:"required"`
	Dosage           string  `json:"dosage" validate:"required"`
	Frequency        string  `json:"frequency" validate:"required"`
	Duration         string  `json:"duration" validate:"required"`
	Instructions     *string `json:"instructions"`
	Status           string  `json:"status" validate:"omitempty,oneof=active completed discontinued"`
	StartDate        string  `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate          *string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	RefillsRemaining *int    `json:"refillsRemaining" validate:"omitempty,min=0"`
	PharmacyNotes    *string `json:"pharmacyNotes"`
}

func (r CreatePrescriptionRequest) toInput() records.NewPrescription {
	return records.NewPrescription{
		PatientID:        r.PatientID,
		DoctorID:         r.DoctorID,
		AppointmentID:    r.AppointmentID,
		MedicationName:   r.MedicationName,
		Dosage:           r.Dosage,
		Frequency:        r.Frequency,
		Duration:         r.Duration,
		Instructions:     r.Instructions,
		Status:           records.PrescriptionStatus(r.Status),
		StartDate:        r.StartDate,
		EndDate:          r.EndDate,
		RefillsRemaining: r.RefillsRemaining,
		PharmacyNotes:    r.PharmacyNotes,
	}
}

type UpdatePrescriptionRequest struct {
	PatientID        *int64  `json:"patientId" validate:"omitempty,gt=0"`
	DoctorID         *string `json:"doctorId" validate:"omitempty,min=1"`
	AppointmentID    *int64  `json:"appointmentId" validate:"omitempty,gt=0"`
	MedicationName   *string `json:"medicationName" validate:"omitempty,min=1"`
	Dosage           *string `json:"dosage" validate:"omitempty,min=1"`
	Frequency        *string `json:"frequency" validate:"omitempty,min=1"`
	Duration         *string `json:"duration" validate:"omitempty,min=1"`
	Instructions     *string `json:"instructions"`
	Status           *string `json:"status" validate:"omitempty,oneof=active completed discontinued"`
	StartDate        *string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate          *string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	RefillsRemaining *int    `json:"refillsRemaining" validate:"omitempty,min=0"`
	PharmacyNotes    *string `json:"pharmacyNotes"`
}

func (r UpdatePrescriptionRequest) toPatch() records.PrescriptionPatch {
	return records.PrescriptionPatch{
		PatientID:        r.PatientID,
		DoctorID:         r.DoctorID,
		AppointmentID:    r.AppointmentID,
		MedicationName:   r.MedicationName,
		Dosage:           r.Dosage,
		Frequency:        r.Frequency,
		Duration:         r.Duration,
		Instructions:     r.Instructions,
		Status:           variant[records.PrescriptionStatus](r.Status),
		StartDate:        r.StartDate,
		EndDate:          r.EndDate,
		RefillsRemaining: r.RefillsRemaining,
		PharmacyNotes:    r.PharmacyNotes,
	}
}

type CreateStaffRequest struct {
	FirstName string  `json:"firstName" validate:"required"`
	LastName  string  `json:"lastName" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Role      string  `json:"role" validate:"required,oneof=doctor nurse admin"`
	Specialty *string `json:"specialty"`
}

func (r CreateStaffRequest) toInput() records.NewStaff {
	return records.NewStaff{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Role:      records.Role(r.Role),
		Specialty: r.Specialty,
	}
}

type UpdateStaffRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Role      *string `json:"role" validate:"omitempty,oneof=doctor nurse admin"`
	Specialty *string `json:"specialty"`
}

func (r UpdateStaffRequest) toPatch() records.UserPatch {
	return records.UserPatch{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Role:      variant[records.Role](r.Role),
		Specialty: r.Specialty,
	}
}

// variant converts an already validated optional string to its closed type.
func variant[T ~string](s *string) *T {
	if s == nil {
		return nil
	}
	v := T(*s)
	return &v
}
