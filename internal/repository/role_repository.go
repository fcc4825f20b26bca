package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/agds-alt/ins-wc-ddd-sub002/internal/model"
)

// RoleRepo wraps the `roles` and `user_roles` tables and performs role
// resolution for a user identity.
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// Resolve joins user_roles to roles for the given user and projects the
// effective {name, level}. Zero assignment rows is not an error: the user
// simply sits at the baseline tier. When stray duplicate assignments
// exist the highest level wins, deterministically.
func (r *RoleRepo) Resolve(ctx context.Context, userID uint64) (string, int, error) {
	var (
		name  string
		level int
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT r.name, r.level
		   FROM user_roles ur
		   JOIN roles r ON r.id = ur.role_id
		  WHERE ur.user_id = ? AND r.is_active = 1
		  ORDER BY r.level DESC
		  LIMIT 1`,
		userID).Scan(&name, &level)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultRoleName, model.RoleLevelUser, nil
	}
	if err != nil {
		return "", 0, err
	}
	return name, level, nil
}

// List returns all roles ordered by level.
func (r *RoleRepo) List(ctx context.Context, activeOnly bool) ([]model.Role, error) {
	q := "SELECT id,name,description,level,is_active,created_at FROM roles"
	if activeOnly {
		q += " WHERE is_active=1"
	}
	q += " ORDER BY level DESC, name"

	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []model.Role
	for rows.Next() {
		var ro model.Role
		if err := rows.Scan(&ro.ID, &ro.Name, &ro.Description, &ro.Level, &ro.IsActive, &ro.CreatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, ro)
	}
	return roles, rows.Err()
}

// GetByID fetches a single role row.
func (r *RoleRepo) GetByID(ctx context.Context, id uint64) (model.Role, error) {
	var ro model.Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,description,level,is_active,created_at FROM roles WHERE id=? LIMIT 1",
		id).Scan(&ro.ID, &ro.Name, &ro.Description, &ro.Level, &ro.IsActive, &ro.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Role{}, ErrNotFound
	}
	return ro, err
}

// Assign gives the user exactly one role. Any existing assignments are
// removed in the same transaction before the new row is inserted, so a
// user can never accumulate conflicting assignments through this path.
// Assigning an inactive role is refused.
func (r *RoleRepo) Assign(ctx context.Context, userID, roleID, assignedBy uint64) error {
	role, err := r.GetByID(ctx, roleID)
	if err != nil {
		return err
	}
	if !role.IsActive {
		return ErrConflict
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM user_roles WHERE user_id=?", userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO user_roles (user_id, role_id, assigned_by) VALUES (?,?,?)",
		userID, roleID, assignedBy); err != nil {
		return err
	}
	return tx.Commit()
}

// Unassign removes every role assignment for the user, dropping them back
// to the baseline tier.
func (r *RoleRepo) Unassign(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM user_roles WHERE user_id=?", userID)
	return err
}

// DedupAssignments removes stray duplicate assignment rows left behind by
// earlier tooling, keeping only the highest-level assignment per affected
// user. Maintenance operation, reachable only from the super-admin debug
// endpoint; it reports how many rows were removed.
func (r *RoleRepo) DedupAssignments(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`DELETE ur FROM user_roles ur
		   JOIN user_roles keep ON keep.user_id = ur.user_id AND keep.id <> ur.id
		   JOIN roles r1 ON r1.id = ur.role_id
		   JOIN roles r2 ON r2.id = keep.role_id
		  WHERE r2.level > r1.level
		     OR (r2.level = r1.level AND keep.id < ur.id)`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
