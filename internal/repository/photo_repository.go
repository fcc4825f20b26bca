package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/agds-alt/ins-wc-ddd-sub002/internal/model"
)

// PhotoRepo wraps the `photos` table. Photos are metadata records only;
// the bytes live in external object storage referenced by URL. Rows are
// soft-deleted, never removed.
type PhotoRepo struct{ DB *sql.DB }

func NewPhotoRepo(db *sql.DB) *PhotoRepo { return &PhotoRepo{DB: db} }

const photoColumns = "id,url,caption,width,height,mime_type,inspection_id,location_id,is_deleted,deleted_by,deleted_at,created_at"

// Create registers a photo record and returns its ID.
func (r *PhotoRepo) Create(ctx context.Context, p model.Photo) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO photos (url, caption, width, height, mime_type, inspection_id, location_id)
		 VALUES (?,?,?,?,?,?,?)`,
		p.URL, p.Caption, p.Width, p.Height, p.MimeType, p.InspectionID, p.LocationID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a photo regardless of its deleted state; callers decide
// whether deleted records are visible.
func (r *PhotoRepo) GetByID(ctx context.Context, id uint64) (model.Photo, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+photoColumns+" FROM photos WHERE id=? LIMIT 1", id)
	return scanPhoto(row)
}

// ListByInspection returns an inspection's photos. Deleted photos are
// excluded unless includeDeleted is set (admin listings).
func (r *PhotoRepo) ListByInspection(ctx context.Context, inspectionID uint64, includeDeleted bool) ([]model.Photo, error) {
	q := "SELECT " + photoColumns + " FROM photos WHERE inspection_id=?"
	if !includeDeleted {
		q += " AND is_deleted=0"
	}
	q += " ORDER BY created_at LIMIT ?"

	rows, err := r.DB.QueryContext(ctx, q, inspectionID, DefaultPageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []model.Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

// SoftDelete marks a photo deleted with the acting admin's id. Deleting
// an already-deleted photo reports not found, matching what a fresh read
// would show.
func (r *PhotoRepo) SoftDelete(ctx context.Context, id, deletedBy uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE photos SET is_deleted=1, deleted_by=?, deleted_at=UTC_TIMESTAMP() WHERE id=? AND is_deleted=0",
		deletedBy, id)
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

func scanPhoto(s scanner) (model.Photo, error) {
	var p model.Photo
	err := s.Scan(&p.ID, &p.URL, &p.Caption, &p.Width, &p.Height, &p.MimeType,
		&p.InspectionID, &p.LocationID, &p.IsDeleted, &p.DeletedBy, &p.DeletedAt, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Photo{}, ErrNotFound
	}
	return p, err
}
