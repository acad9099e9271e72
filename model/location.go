package model

import "github.com/google/uuid"

// Location is a shared drop-off point. Limit is the declared capacity; it is
// stored and returned but not checked against the instance count.
type Location struct {
	ID      uuid.UUID `json:"id"`
	Address string    `json:"address"`
	Extra   string    `json:"extra"`
	Name    string    `json:"name"`
	Limit   int       `json:"limit"`
}
