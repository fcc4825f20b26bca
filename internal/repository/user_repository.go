package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/agds-alt/ins-wc-ddd-sub002/internal/model"
)

// UserRepo wraps row access to the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,password_hash,full_name,phone,photo_url,occupation,is_active,last_login_at,created_at,updated_at"

// UserFilter narrows List results. Zero values mean "no filter".
type UserFilter struct {
	Email  string // pattern match on email (substring)
	Active *bool  // filter on is_active
	Limit  int    // page size, clamped to DefaultPageSize
	Offset int
}

// Create inserts a user with a pre-hashed password and returns its ID.
// Hashing happens in the handler layer so the repository never sees a
// plaintext password.
func (r *UserRepo) Create(ctx context.Context, email, passwordHash, fullName string, phone *string) (uint64, error) {
	email = strings.TrimSpace(email)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, full_name, phone, is_active) VALUES (?,?,?,?,1)",
		email, passwordHash, fullName, phone)
	if err != nil {
		// MySQL duplicate-key errors carry code 1062.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by email. The password hash is needed by the
// login path, so it is returned separately from the model value.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, string, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1",
		strings.TrimSpace(email))
	return scanUser(row)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, string, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// GetWithRole fetches a user and resolves its effective role in one read.
// This is the joined "find-with-role" lookup behind the authenticated
// identity query.
func (r *UserRepo) GetWithRole(ctx context.Context, roles *RoleRepo, id uint64) (model.User, error) {
	u, _, err := r.GetByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	name, level, err := roles.Resolve(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	return u.WithRole(name, level), nil
}

// List returns users matching the filter, newest first. The limit is
// clamped to the default page size.
func (r *UserRepo) List(ctx context.Context, f UserFilter) ([]model.User, error) {
	q := "SELECT " + userColumns + " FROM users WHERE 1=1"
	args := []interface{}{}
	if f.Email != "" {
		q += " AND email LIKE ?"
		args = append(args, "%"+f.Email+"%")
	}
	if f.Active != nil {
		q += " AND is_active=?"
		args = append(args, *f.Active)
	}
	q += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, ClampLimit(f.Limit), f.Offset)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, _, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// TouchLastLogin records a successful login timestamp.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_login_at=UTC_TIMESTAMP() WHERE id=?", id)
	return err
}

// SetActive flips the account's active flag.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_active=? WHERE id=?", active, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the stored password hash (admin reset path).
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", passwordHash, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface{ Scan(dest ...interface{}) error }

func scanUser(s scanner) (model.User, string, error) {
	var (
		u    model.User
		hash string
	)
	err := s.Scan(&u.ID, &u.Email, &hash, &u.FullName, &u.Phone, &u.PhotoURL,
		&u.Occupation, &u.IsActive, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, "", ErrNotFound
	}
	if err != nil {
		return model.User{}, "", err
	}
	return u, hash, nil
}

// storeTimeout bounds individual store calls so a stalled database
// surfaces as a request error instead of a hung request.
const storeTimeout = 5 * time.Second

// WithTimeout derives the bounded context every handler uses around store
// calls.
func WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, storeTimeout)
}
