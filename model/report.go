package model

import "github.com/google/uuid"

// Report is a dispute raised against a reserved instance. It exists only
// while the underlying instance is REPORTED.
type Report struct {
	ID            uuid.UUID `json:"id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	Text          string    `json:"text"`
}
