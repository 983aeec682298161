package records

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type noteRepoPG struct {
	db queryable
}

const noteCols = `id, patient_id, doctor_id, appointment_id, title, content, "type", created_at, updated_at`

func scanNote(row pgx.Row) (*ClinicalNote, error) {
	var n ClinicalNote
	err := row.Scan(
		&n.ID,
		&n.PatientID,
		&n.DoctorID,
		&n.AppointmentID,
		&n.Title,
		&n.Content,
		&n.Type,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, rowError(err, ErrClinicalNoteNotFound)
	}
	return &n, nil
}

func (r *noteRepoPG) Get(ctx context.Context, id int64) (*ClinicalNote, error) {
	return scanNote(r.db.QueryRow(ctx, `SELECT `+noteCols+` FROM clinical_notes WHERE id = $1`, id))
}

func (r *noteRepoPG) Create(ctx context.Context, n NewClinicalNote) (*ClinicalNote, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO clinical_notes (patient_id, doctor_id, appointment_id, title, content, "type")
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+noteCols,
		n.PatientID, n.DoctorID, n.AppointmentID, n.Title, n.Content, n.Type,
	)
	return scanNote(row)
}

func (r *noteRepoPG) Update(ctx context.Context, id int64, p ClinicalNotePatch) (*ClinicalNote, error) {
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
	if p.Title != nil {
		set.add("title", *p.Title)
	}
	if p.Content != nil {
		set.add("content", *p.Content)
	}
	if p.Type != nil {
		set.add(`"type"`, *p.Type)
	}

	sql, args := set.update("clinical_notes", noteCols, id)
	return scanNote(r.db.QueryRow(ctx, sql, args...))
}

func (r *noteRepoPG) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM clinical_notes WHERE id = $1`, id)
	return deleteError(err)
}

func (r *noteRepoPG) List(ctx context.Context) ([]ClinicalNote, error) {
	rows, err := r.db.Query(ctx, `SELECT `+noteCols+` FROM clinical_notes ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanNote)
}

func (r *noteRepoPG) ListByPatient(ctx context.Context, patientID int64) ([]ClinicalNote, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+noteCols+`
		FROM clinical_notes
		WHERE patient_id = $1
		ORDER BY created_at DESC, id DESC
	`, patientID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanNote)
}

func (r *noteRepoPG) CountByType(ctx context.Context, noteType string) (int, error) {
	return countRows(ctx, r.db, `SELECT count(*) FROM clinical_notes WHERE "type" = $1`, noteType)
}
