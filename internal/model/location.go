package model

import "time"

// Location is a facility location that carries a QR token. Scanning the
// printed QR code resolves the token to this record and opens the
// inspection form for the right facility.
type Location struct {
	ID        uint64    // locations.id
	QRToken   string    // locations.qr_token (uuid, unique)
	Name      string    // locations.name
	Building  *string   // locations.building (nullable)
	Floor     *string   // locations.floor (nullable)
	IsActive  bool      // locations.is_active
	CreatedAt time.Time // locations.created_at
	UpdatedAt time.Time // locations.updated_at
}

// WithQRToken returns a copy of the location carrying a fresh QR token.
// Regenerating the token invalidates previously printed codes.
func (l Location) WithQRToken(token string) Location {
	l.QRToken = token
	return l
}
