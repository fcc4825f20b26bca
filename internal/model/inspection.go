package model

import "time"

// Inspection statuses derived from the submitted scores.
const (
	InspectionStatusGood         = "GOOD"
	InspectionStatusNeedsWork    = "NEEDS_WORK"
	InspectionStatusUnacceptable = "UNACCEPTABLE"
)

// Score bounds for the per-criterion ratings.
const (
	MinScore = 1
	MaxScore = 5
)

// Inspection records one submitted facility check. InspectorID is nil for
// anonymous submissions straight from a QR scan. Verification is an admin
// action recorded with who/when, mirroring the soft-delete audit shape on
// Photo.
type Inspection struct {
	ID          uint64     // inspections.id
	LocationID  uint64     // inspections.location_id
	InspectorID *uint64    // inspections.inspector_id (nullable)
	Cleanliness int        // inspections.cleanliness (1-5)
	Supplies    int        // inspections.supplies (1-5)
	Condition   int        // inspections.condition (1-5)
	Status      string     // inspections.status (derived at submit time)
	Notes       *string    // inspections.notes (nullable)
	IsVerified  bool       // inspections.is_verified
	VerifiedBy  *uint64    // inspections.verified_by (nullable)
	VerifiedAt  *time.Time // inspections.verified_at (nullable)
	CreatedAt   time.Time  // inspections.created_at
}

// StatusForScores derives the overall status from the three criterion
// scores: any failing score (1) is unacceptable, an average below 3.5
// needs work, otherwise good.
func StatusForScores(cleanliness, supplies, condition int) string {
	if cleanliness <= 1 || supplies <= 1 || condition <= 1 {
		return InspectionStatusUnacceptable
	}
	// Integer form of avg < 3.5: the largest failing sum is 10 (avg 3.33)
	// and the smallest passing sum is 11 (avg 3.67).
	if cleanliness+supplies+condition < 11 {
		return InspectionStatusNeedsWork
	}
	return InspectionStatusGood
}

// Verified returns a copy of the inspection marked verified by the given
// admin at the given time.
func (i Inspection) Verified(by uint64, at time.Time) Inspection {
	i.IsVerified = true
	i.VerifiedBy = &by
	i.VerifiedAt = &at
	return i
}
