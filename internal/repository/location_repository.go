package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/agds-alt/ins-wc-ddd-sub002/internal/model"
)

// LocationRepo wraps the `locations` table. Every location carries a
// unique QR token; the printed QR code encodes the public scan URL built
// from it.
type LocationRepo struct{ DB *sql.DB }

func NewLocationRepo(db *sql.DB) *LocationRepo { return &LocationRepo{DB: db} }

const locationColumns = "id,qr_token,name,building,floor,is_active,created_at,updated_at"

// Create inserts a location with a freshly generated QR token.
func (r *LocationRepo) Create(ctx context.Context, name string, building, floor *string) (model.Location, error) {
	token := uuid.NewString()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO locations (qr_token, name, building, floor, is_active) VALUES (?,?,?,?,1)",
		token, name, building, floor)
	if err != nil {
		return model.Location{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Location{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a location by id.
func (r *LocationRepo) GetByID(ctx context.Context, id uint64) (model.Location, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+locationColumns+" FROM locations WHERE id=? LIMIT 1", id)
	return scanLocation(row)
}

// GetByQRToken resolves a scanned QR token to its location. Inactive
// locations are hidden from the scan path so retired facilities stop
// accepting submissions without losing history.
func (r *LocationRepo) GetByQRToken(ctx context.Context, token string) (model.Location, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+locationColumns+" FROM locations WHERE qr_token=? AND is_active=1 LIMIT 1",
		strings.TrimSpace(token))
	return scanLocation(row)
}

// List returns locations, optionally filtered by name substring, newest
// first and clamped to the default page size.
func (r *LocationRepo) List(ctx context.Context, nameLike string, limit, offset int) ([]model.Location, error) {
	q := "SELECT " + locationColumns + " FROM locations WHERE 1=1"
	args := []interface{}{}
	if nameLike != "" {
		q += " AND name LIKE ?"
		args = append(args, "%"+nameLike+"%")
	}
	q += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, ClampLimit(limit), offset)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locs []model.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locs = append(locs, l)
	}
	return locs, rows.Err()
}

// Update replaces the editable fields of a location.
func (r *LocationRepo) Update(ctx context.Context, id uint64, name string, building, floor *string, active bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE locations SET name=?, building=?, floor=?, is_active=? WHERE id=?",
		name, building, floor, active, id)
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

// RegenerateQRToken replaces the location's QR token and returns the new
// value. Previously printed codes stop resolving immediately.
func (r *LocationRepo) RegenerateQRToken(ctx context.Context, id uint64) (string, error) {
	token := uuid.NewString()
	res, err := r.DB.ExecContext(ctx,
		"UPDATE locations SET qr_token=? WHERE id=?", token, id)
	if err != nil {
		return "", err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", ErrNotFound
	}
	return token, nil
}

func scanLocation(s scanner) (model.Location, error) {
	var l model.Location
	err := s.Scan(&l.ID, &l.QRToken, &l.Name, &l.Building, &l.Floor,
		&l.IsActive, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Location{}, ErrNotFound
	}
	return l, err
}
