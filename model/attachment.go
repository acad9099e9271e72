package model

import "github.com/google/uuid"

// Attachment is the metadata row next to the blob store entry keyed by ID.
type Attachment struct {
	ID          uuid.UUID `json:"id"`
	Extension   *string   `json:"extension,omitempty"`
	ContentType string    `json:"content_type"`
}
