package records

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// NewPgRepositories wires every entity repository to the same pool.
func NewPgRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:         &userRepoPG{db: pool},
		Patients:      &patientRepoPG{db: pool},
		Appointments:  &appointmentRepoPG{db: pool},
		Notes:         &noteRepoPG{db: pool},
		Prescriptions: &prescriptionRepoPG{db: pool},
	}
}

// Helpers

// writeError maps constraint violations raised by INSERT/UPDATE.
func writeError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrInvalidReference, pgErr.ConstraintName)
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicateEmail, pgErr.ConstraintName)
		}
	}
	return err
}

// deleteError maps the foreign key violation raised when dependents remain.
func deleteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return fmt.Errorf("%w: %s", ErrHasDependents, pgErr.ConstraintName)
	}
	return err
}

func rowError(err, notFound error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	return writeError(err)
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (*T, error)) ([]T, error) {
	defer rows.Close()

	result := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *v)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func countRows(ctx context.Context, db queryable, sql string, args ...any) (int, error) {
	var n int
	if err := db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// setList accumulates "column = $n" fragments for partial updates.
type setList struct {
	parts []string
	args  []any
}

func (s *setList) add(column string, value any) {
	s.addCast(column, value, "")
}

func (s *setList) addCast(column string, value any, cast string) {
	s.args = append(s.args, value)
	s.parts = append(s.parts, fmt.Sprintf("%s = $%d%s", column, len(s.args), cast))
}

// update renders an UPDATE for a single row. updated_at always refreshes,
// even when the patch carries no fields.
func (s *setList) update(table, returning string, id any) (string, []any) {
	parts := append(append([]string{}, s.parts...), "updated_at = now()")
	args := append(append([]any{}, s.args...), id)

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		table, strings.Join(parts, ", "), len(args), returning)
	return sql, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s anywhere, case folded.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
