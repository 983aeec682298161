package records

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type appointmentRepoPG struct {
	db queryable
}

const appointmentCols = `id, patient_id, doctor_id, to_char("date", 'YYYY-MM-DD'), to_char("time", 'HH24:MI'),
	"type", status, notes, duration, created_at, updated_at`

const appointmentLatestFirst = `ORDER BY "date" DESC, "time" DESC, id DESC`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.DoctorID,
		&a.Date,
		&a.Time,
		&a.Type,
		&a.Status,
		&a.Notes,
		&a.Duration,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, rowError(err, ErrAppointmentNotFound)
	}
	return &a, nil
}

func (r *appointmentRepoPG) Get(ctx context.Context, id int64) (*Appointment, error) {
	return scanAppointment(r.db.QueryRow(ctx, `SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id))
}

func (r *appointmentRepoPG) GetMany(ctx context.Context, ids []int64) (map[int64]*Appointment, error) {
	rows, err := r.db.Query(ctx, `SELECT `+appointmentCols+` FROM appointments WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	appts, err := collect(rows, scanAppointment)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*Appointment, len(appts))
	for i := range appts {
		byID[appts[i].ID] = &appts[i]
	}
	return byID, nil
}

func (r *appointmentRepoPG) Create(ctx context.Context, a NewAppointment) (*Appointment, error) {
	a = a.withDefaults()

	row := r.db.QueryRow(ctx, `
		INSERT INTO appointments (patient_id, doctor_id, "date", "time", "type", status, notes, duration)
		VALUES ($1, $2, $3::date, $4::time, $5, $6, $7, $8)
		RETURNING `+appointmentCols,
		a.PatientID, a.DoctorID, a.Date, a.Time, a.Type, a.Status, a.Notes, a.Duration,
	)
	return scanAppointment(row)
}

func (r *appointmentRepoPG) Update(ctx context.Context, id int64, p AppointmentPatch) (*Appointment, error) {
	sql, args := appointmentUpdate(id, p)
	return scanAppointment(r.db.QueryRow(ctx, sql, args...))
}

func appointmentUpdate(id int64, p AppointmentPatch) (string, []any) {
	var set setList
	if p.PatientID != nil {
		set.add("patient_id", *p.PatientID)
	}
	if p.DoctorID != nil {
		set.add("doctor_id", *p.DoctorID)
	}
	if p.Date != nil {
		set.addCast(`"date"`, *p.Date, "::date")
	}
	if p.Time != nil {
		set.addCast(`"time"`, *p.Time, "::time")
	}
	if p.Type != nil {
		set.add(`"type"`, *p.Type)
	}
	if p.Status != nil {
		set.add("status", *p.Status)
	}
	if p.Notes != nil {
		set.add("notes", *p.Notes)
	}
	if p.Duration != nil {
		set.add("duration", *p.Duration)
	}
	return set.update("appointments", appointmentCols, id)
}

func (r *appointmentRepoPG) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	return deleteError(err)
}

func (r *appointmentRepoPG) List(ctx context.Context) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `SELECT `+appointmentCols+` FROM appointments `+appointmentLatestFirst)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanAppointment)
}

func (r *appointmentRepoPG) ListByDoctor(ctx context.Context, doctorID string) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+appointmentCols+`
		FROM appointments
		WHERE doctor_id = $1
		`+appointmentLatestFirst, doctorID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanAppointment)
}

func (r *appointmentRepoPG) ListByDate(ctx context.Context, date string) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+appointmentCols+`
		FROM appointments
		WHERE "date" = $1::date
		ORDER BY "time", id
	`, date)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanAppointment)
}

func (r *appointmentRepoPG) CountByDate(ctx context.Context, date string) (int, error) {
	return countRows(ctx, r.db, `SELECT count(*) FROM appointments WHERE "date" = $1::date`, date)
}
