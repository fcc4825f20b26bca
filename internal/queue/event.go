// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// InspectionSubmittedEvent is published when an inspection form is
// submitted. It carries enough detail for downstream consumers to log,
// notify facility staff, or feed analytics without querying the primary
// database. InspectorID is zero for anonymous scan submissions.
type InspectionSubmittedEvent struct {
	InspectionID uint64 `json:"inspection_id"`
	LocationID   uint64 `json:"location_id"`
	LocationName string `json:"location_name"`
	InspectorID  uint64 `json:"inspector_id,omitempty"`
	Cleanliness  int    `json:"cleanliness"`
	Supplies     int    `json:"supplies"`
	Condition    int    `json:"condition"`
	Status       string `json:"status"`
	SubmittedAt  string `json:"submitted_at"`
}
