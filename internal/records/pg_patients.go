package records

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type patientRepoPG struct {
	db queryable
}

const patientCols = `id, first_name, last_name, email, phone, to_char(date_of_birth, 'YYYY-MM-DD'),
	gender, address, emergency_contact, emergency_phone, medical_history, allergies, medications,
	status, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID,
		&p.FirstName,
		&p.LastName,
		&p.Email,
		&p.Phone,
		&p.DateOfBirth,
		&p.Gender,
		&p.Address,
		&p.EmergencyContact,
		&p.EmergencyPhone,
		&p.MedicalHistory,
		&p.Allergies,
		&p.Medications,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, rowError(err, ErrPatientNotFound)
	}
	return &p, nil
}

func (r *patientRepoPG) Get(ctx context.Context, id int64) (*Patient, error) {
	return scanPatient(r.db.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *patientRepoPG) GetMany(ctx context.Context, ids []int64) (map[int64]*Patient, error) {
	rows, err := r.db.Query(ctx, `SELECT `+patientCols+` FROM patients WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	patients, err := collect(rows, scanPatient)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*Patient, len(patients))
	for i := range patients {
		byID[patients[i].ID] = &patients[i]
	}
	return byID, nil
}

func (r *patientRepoPG) Create(ctx context.Context, p NewPatient) (*Patient, error) {
	p = p.withDefaults()

	row := r.db.QueryRow(ctx, `
		INSERT INTO patients (first_name, last_name, email, phone, date_of_birth, gender, address,
			emergency_contact, emergency_phone, medical_history, allergies, medications, status)
		VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+patientCols,
		p.FirstName, p.LastName, p.Email, p.Phone, p.DateOfBirth, p.Gender, p.Address,
		p.EmergencyContact, p.EmergencyPhone, p.MedicalHistory, p.Allergies, p.Medications, p.Status,
	)
	return scanPatient(row)
}

func (r *patientRepoPG) Update(ctx context.Context, id int64, p PatientPatch) (*Patient, error) {
	sql, args := patientUpdate(id, p)
	return scanPatient(r.db.QueryRow(ctx, sql, args...))
}

func patientUpdate(id int64, p PatientPatch) (string, []any) {
	var set setList
	if p.FirstName != nil {
		set.add("first_name", *p.FirstName)
	}
	if p.LastName != nil {
		set.add("last_name", *p.LastName)
	}
	if p.Email != nil {
		set.add("email", *p.Email)
	}
	if p.Phone != nil {
		set.add("phone", *p.Phone)
	}
	if p.DateOfBirth != nil {
		set.addCast("date_of_birth", *p.DateOfBirth, "::date")
	}
	if p.Gender != nil {
		set.add("gender", *p.Gender)
	}
	if p.Address != nil {
		set.add("address", *p.Address)
	}
	if p.EmergencyContact != nil {
		set.add("emergency_contact", *p.EmergencyContact)
	}
	if p.EmergencyPhone != nil {
		set.add("emergency_phone", *p.EmergencyPhone)
	}
	if p.MedicalHistory != nil {
		set.add("medical_history", *p.MedicalHistory)
	}
	if p.Allergies != nil {
		set.add("allergies", *p.Allergies)
	}
	if p.Medications != nil {
		set.add("medications", *p.Medications)
	}
	if p.Status != nil {
		set.add("status", *p.Status)
	}
	return set.update("patients", patientCols, id)
}

func (r *patientRepoPG) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	return deleteError(err)
}

func (r *patientRepoPG) List(ctx context.Context) ([]Patient, error) {
	rows, err := r.db.Query(ctx, `SELECT `+patientCols+` FROM patients ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPatient)
}

func (r *patientRepoPG) Search(ctx context.Context, query string) ([]Patient, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+patientCols+`
		FROM patients
		WHERE lower(first_name) LIKE $1 ESCAPE '\'
		   OR lower(last_name) LIKE $1 ESCAPE '\'
		   OR lower(email) LIKE $1 ESCAPE '\'
		ORDER BY created_at DESC, id DESC
	`, containsPattern(query))
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPatient)
}

func (r *patientRepoPG) CountByStatus(ctx context.Context, status PatientStatus) (int, error) {
	return countRows(ctx, r.db, `SELECT count(*) FROM patients WHERE status = $1`, status)
}
