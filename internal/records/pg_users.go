package records

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type userRepoPG struct {
	db queryable
}

const userCols = `id, email, first_name, last_name, profile_image_url, role, specialty, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.ProfileImageURL,
		&u.Role,
		&u.Specialty,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, rowError(err, ErrUserNotFound)
	}
	return &u, nil
}

func (r *userRepoPG) Get(ctx context.Context, id string) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *userRepoPG) GetMany(ctx context.Context, ids []string) (map[string]*User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userCols+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	users, err := collect(rows, scanUser)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	return byID, nil
}

const claimStaffSQL = `
	UPDATE users SET id = $1, updated_at = now()
	WHERE email = $2 AND id LIKE $3
	  AND NOT EXISTS (SELECT 1 FROM users WHERE id = $1)`

const upsertUserSQL = `
	INSERT INTO users (id, email, first_name, last_name, profile_image_url, role, specialty)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO UPDATE SET
		email             = COALESCE($2, users.email),
		first_name        = COALESCE($3, users.first_name),
		last_name         = COALESCE($4, users.last_name),
		profile_image_url = COALESCE($5, users.profile_image_url),
		role              = COALESCE($8, users.role),
		specialty         = COALESCE($7, users.specialty),
		updated_at        = now()
	RETURNING ` + userCols

// upsertUserArgs binds the role twice: $6 is the defaulted role a new row
// gets, $8 is the role as supplied, so a login that carries none keeps the
// stored one.
func upsertUserArgs(p UserProfile) []any {
	return []any{p.ID, p.Email, p.FirstName, p.LastName, p.ProfileImageURL, p.role(), p.Specialty, p.Role}
}

// Upsert inserts the profile or, when the id exists, overwrites only the
// supplied fields. A first login whose email matches a pre-created staff row
// takes that row over; ON UPDATE CASCADE moves its doctor references.
func (r *userRepoPG) Upsert(ctx context.Context, p UserProfile) (*User, error) {
	if p.Email != nil {
		if _, err := r.db.Exec(ctx, claimStaffSQL, p.ID, *p.Email, StaffIDPrefix+"%"); err != nil {
			return nil, writeError(err)
		}
	}
	return scanUser(r.db.QueryRow(ctx, upsertUserSQL, upsertUserArgs(p)...))
}

func (r *userRepoPG) Create(ctx context.Context, id string, s NewStaff) (*User, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (id, email, first_name, last_name, role, specialty)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userCols,
		id, s.Email, s.FirstName, s.LastName, s.Role, s.Specialty,
	)
	return scanUser(row)
}

func (r *userRepoPG) Update(ctx context.Context, id string, p UserPatch) (*User, error) {
	var set setList
	if p.Email != nil {
		set.add("email", *p.Email)
	}
	if p.FirstName != nil {
		set.add("first_name", *p.FirstName)
	}
	if p.LastName != nil {
		set.add("last_name", *p.LastName)
	}
	if p.ProfileImageURL != nil {
		set.add("profile_image_url", *p.ProfileImageURL)
	}
	if p.Role != nil {
		set.add("role", *p.Role)
	}
	if p.Specialty != nil {
		set.add("specialty", *p.Specialty)
	}

	sql, args := set.update("users", userCols, id)
	return scanUser(r.db.QueryRow(ctx, sql, args...))
}

func (r *userRepoPG) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return deleteError(err)
}

func (r *userRepoPG) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userCols+`
		FROM users
		ORDER BY last_name NULLS LAST, first_name NULLS LAST, id
	`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanUser)
}
