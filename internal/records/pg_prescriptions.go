package records

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type prescriptionRepoPG struct {
	db queryable
}

const prescriptionCols = `id, patient_id, doctor_id, appointment_id, medication_name, dosage, frequency,
	duration, instructions, status, to_char(start_date, 'YYYY-MM-DD'), to_char(end_date, 'YYYY-MM-DD'),
	refills_remaining, pharmacy_notes, created_at, updated_at`

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var rx Prescription
	err := row.Scan(
		&rx.ID,
		&rx.PatientID,
		&rx.DoctorID,
		&rx.AppointmentID,
		&rx.MedicationName,
		&rx.Dosage,
		&rx.Frequency,
		&rx.Duration,
		&rx.Instructions,
		&rx.Status,
		&rx.StartDate,
		&rx.EndDate,
		&rx.RefillsRemaining,
		&rx.PharmacyNotes,
		&rx.CreatedAt,
		&rx.UpdatedAt,
	)
	if err != nil {
		return nil, rowError(err, ErrPrescriptionNotFound)
	}
	return &rx, nil
}

func (r *prescriptionRepoPG) Get(ctx context.Context, id int64) (*Prescription, error) {
	return scanPrescription(r.db.QueryRow(ctx, `SELECT `+prescriptionCols+` FROM prescriptions WHERE id = $1`, id))
}

func (r *prescriptionRepoPG) Create(ctx context.Context, rx NewPrescription) (*Prescription, error) {
	rx = rx.withDefaults()

	row := r.db.QueryRow(ctx, `
		INSERT INTO prescriptions (patient_id, doctor_id, appointment_id, medication_name, dosage,
			frequency, duration, instructions, status, start_date, end_date, refills_remaining, pharmacy_notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::date, $11::date, $12, $13)
		RETURNING `+prescriptionCols,
		rx.PatientID, rx.DoctorID, rx.AppointmentID, rx.MedicationName, rx.Dosage,
		rx.Frequency, rx.Duration, rx.Instructions, rx.Status, rx.StartDate, rx.EndDate,
		*rx.RefillsRemaining, rx.PharmacyNotes,
	)
	return scanPrescription(row)
}

func (r *prescriptionRepoPG) Update(ctx context.Context, id int64, p PrescriptionPatch) (*Prescription, error) {
	var set setList
	if p.PatientID != nil {
		set.add("patient_id", *p.PatientID)
	}
	if p.DoctorID != nil {
		set.add("doctor_id", *p.DoctorID)
	}
	if p.AppointmentID != nil {
		set.add("appointment_id", *p.AppointmentID)
	}
	if p.MedicationName != nil {
		set.add("medication_name", *p.MedicationName)
	}
	if p.Dosage != nil {
		set.add("dosage", *p.Dosage)
	}
	if p.Frequency != nil {
		set.add("frequency", *p.Frequency)
	}
	if p.Duration != nil {
		set.add("duration", *p.Duration)
	}
	if p.Instructions != nil {
		set.add("instructions", *p.Instructions)
	}
	if p.Status != nil {
		set.add("status", *p.Status)
	}
	if p.StartDate != nil {
		set.addCast("start_date", *p.StartDate, "::date")
	}
	if p.EndDate != nil {
		set.addCast("end_date", *p.EndDate, "::date")
	}
	if p.RefillsRemaining != nil {
		set.add("refills_remaining", *p.RefillsRemaining)
	}
	if p.PharmacyNotes != nil {
		set.add("pharmacy_notes", *p.PharmacyNotes)
	}

	sql, args := set.update("prescriptions", prescriptionCols, id)
	return scanPrescription(r.db.QueryRow(ctx, sql, args...))
}

func (r *prescriptionRepoPG) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM prescriptions WHERE id = $1`, id)
	return deleteError(err)
}

func (r *prescriptionRepoPG) List(ctx context.Context) ([]Prescription, error) {
	rows, err := r.db.Query(ctx, `SELECT `+prescriptionCols+` FROM prescriptions ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPrescription)
}

func (r *prescriptionRepoPG) ListByPatient(ctx context.Context, patientID int64) ([]Prescription, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+prescriptionCols+`
		FROM prescriptions
		WHERE patient_id = $1
		ORDER BY created_at DESC, id DESC
	`, patientID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPrescription)
}
