package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/agds-alt/ins-wc-ddd-sub002/internal/model"
)

// InspectionRepo wraps the `inspections` table.
type InspectionRepo struct{ DB *sql.DB }

func NewInspectionRepo(db *sql.DB) *InspectionRepo { return &InspectionRepo{DB: db} }

const inspectionColumns = "id,location_id,inspector_id,cleanliness,supplies,cond,status,notes,is_verified,verified_by,verified_at,created_at"

// InspectionFilter narrows List results.
type InspectionFilter struct {
	LocationID uint64     // 0 means all locations
	Status     string     // "" means all statuses
	From       *time.Time // inclusive lower bound on created_at
	To         *time.Time // exclusive upper bound on created_at
	Limit      int
	Offset     int
}

// Create inserts an inspection. The status has already been derived from
// the scores by the handler.
func (r *InspectionRepo) Create(ctx context.Context, ins model.Inspection) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO inspections
		 (location_id, inspector_id, cleanliness, supplies, cond, status, notes)
		 VALUES (?,?,?,?,?,?,?)`,
		ins.LocationID, ins.InspectorID, ins.Cleanliness, ins.Supplies,
		ins.Condition, ins.Status, ins.Notes)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches an inspection by id.
func (r *InspectionRepo) GetByID(ctx context.Context, id uint64) (model.Inspection, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+inspectionColumns+" FROM inspections WHERE id=? LIMIT 1", id)
	return scanInspection(row)
}

// List returns inspections matching the filter, newest first, clamped to
// the default page size.
func (r *InspectionRepo) List(ctx context.Context, f InspectionFilter) ([]model.Inspection, error) {
	q := "SELECT " + inspectionColumns + " FROM inspections WHERE 1=1"
	args := []interface{}{}
	if f.LocationID != 0 {
		q += " AND location_id=?"
		args = append(args, f.LocationID)
	}
	if f.Status != "" {
		q += " AND status=?"
		args = append(args, f.Status)
	}
	if f.From != nil {
		q += " AND created_at >= ?"
		args = append(args, *f.From)
	}
	if f.To != nil {
		q += " AND created_at < ?"
		args = append(args, *f.To)
	}
	q += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, ClampLimit(f.Limit), f.Offset)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Inspection
	for rows.Next() {
		ins, err := scanInspection(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, ins)
	}
	return list, rows.Err()
}

// Verify marks an inspection as verified by the given admin. Verifying an
// already-verified inspection is a conflict so two admins do not silently
// overwrite each other's review.
func (r *InspectionRepo) Verify(ctx context.Context, id, verifiedBy uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE inspections SET is_verified=1, verified_by=?, verified_at=UTC_TIMESTAMP() WHERE id=? AND is_verified=0",
		verifiedBy, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish missing row from already verified.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

func scanInspection(s scanner) (model.Inspection, error) {
	var ins model.Inspection
	err := s.Scan(&ins.ID, &ins.LocationID, &ins.InspectorID, &ins.Cleanliness,
		&ins.Supplies, &ins.Condition, &ins.Status, &ins.Notes,
		&ins.IsVerified, &ins.VerifiedBy, &ins.VerifiedAt, &ins.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Inspection{}, ErrNotFound
	}
	return ins, err
}
