package model

import (
	"strings"
	"time"
)

// Photo is an immutable record referencing a stored image file. A photo
// belongs to either an inspection or a location (in practice never both;
// the type does not enforce it). Photos are soft-deleted only: the row is
// kept with the deleted flag plus who/when for audit.
type Photo struct {
	ID           uint64     // photos.id
	URL          string     // photos.url
	Caption      *string    // photos.caption (nullable)
	Width        *int       // photos.width (nullable)
	Height       *int       // photos.height (nullable)
	MimeType     *string    // photos.mime_type (nullable)
	InspectionID *uint64    // photos.inspection_id (nullable)
	LocationID   *uint64    // photos.location_id (nullable)
	IsDeleted    bool       // photos.is_deleted
	DeletedBy    *uint64    // photos.deleted_by (nullable)
	DeletedAt    *time.Time // photos.deleted_at (nullable)
	CreatedAt    time.Time  // photos.created_at
}

// IsImage reports whether the stored mime type is an image type. Unknown
// or absent mime types report false.
func (p Photo) IsImage() bool {
	return p.MimeType != nil && strings.HasPrefix(*p.MimeType, "image/")
}

// WithCaption returns a copy of the photo with the caption replaced.
func (p Photo) WithCaption(caption string) Photo {
	p.Caption = &caption
	return p
}

// Deleted returns a soft-deleted copy of the photo recording who removed
// it and when.
func (p Photo) Deleted(by uint64, at time.Time) Photo {
	p.IsDeleted = true
	p.DeletedBy = &by
	p.DeletedAt = &at
	return p
}
