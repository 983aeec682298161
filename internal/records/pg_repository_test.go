package records

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPatientUpdateSQL(t *testing.T) {
	sql, args := patientUpdate(7, PatientPatch{
		LastName: ptr("Byron"),
		Status:   ptr(PatientFollowUp),
	})

	assert.Equal(t,
		"UPDATE patients SET last_name = $1, status = $2, updated_at = now() WHERE id = $3 RETURNING "+patientCols,
		sql)
	assert.Equal(t, []any{"Byron", PatientFollowUp, int64(7)}, args)
}

func TestAppointmentUpdateSQLCastsDateAndTime(t *testing.T) {
	sql, args := appointmentUpdate(3, AppointmentPatch{
		Date: ptr("2024-06-02"),
		Time: ptr("09:45"),
	})

	assert.Contains(t, sql, `SET "date" = $1::date, "time" = $2::time, updated_at = now() WHERE id = $3`)
	assert.Equal(t, []any{"2024-06-02", "09:45", int64(3)}, args)
}

func TestEmptyPatchStillTouchesUpdatedAt(t *testing.T) {
	sql, args := appointmentUpdate(1, AppointmentPatch{})

	assert.Contains(t, sql, "SET updated_at = now() WHERE id = $1")
	assert.Equal(t, []any{int64(1)}, args)
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%ada%", containsPattern("ADA"))
	assert.Equal(t, `%50\%\_off\\%`, containsPattern(`50%_off\`))
}

func TestErrorMapping(t *testing.T) {
	fk := &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "appointments_patient_id_fkey"}
	uniq := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "users_email_key"}

	assert.ErrorIs(t, writeError(fk), ErrInvalidReference)
	assert.ErrorIs(t, writeError(uniq), ErrDuplicateEmail)
	assert.ErrorIs(t, deleteError(fk), ErrHasDependents)
	assert.NoError(t, deleteError(nil))

	assert.ErrorIs(t, rowError(pgx.ErrNoRows, ErrPatientNotFound), ErrPatientNotFound)

	other := errors.New("boom")
	assert.Equal(t, other, rowError(other, ErrPatientNotFound))
}

func TestUpsertUserArgsSplitRole(t *testing.T) {
	args := upsertUserArgs(UserProfile{ID: "idp-1", Email: ptr("grace@clinic.test")})

	assert.Len(t, args, 8)
	assert.Equal(t, RoleDoctor, args[5], "new rows fall back to the default role")
	assert.Equal(t, (*Role)(nil), args[7], "a missing role must not overwrite the stored one")
	assert.Contains(t, upsertUserSQL, "role              = COALESCE($8, users.role)")

	nurse := RoleNurse
	args = upsertUserArgs(UserProfile{ID: "idp-2", Role: &nurse})
	assert.Equal(t, RoleNurse, args[5])
	assert.Equal(t, &nurse, args[7])
}

func TestClaimStaffSQLOnlyTakesUnclaimedRows(t *testing.T) {
	assert.Contains(t, claimStaffSQL, "id LIKE $3")
	assert.Contains(t, claimStaffSQL, "NOT EXISTS (SELECT 1 FROM users WHERE id = $1)")
}
