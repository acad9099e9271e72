// model/instance.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type InstanceCondition string

const (
	ConditionBad     InstanceCondition = "BAD"
	ConditionMedium  InstanceCondition = "MEDIUM"
	ConditionGood    InstanceCondition = "GOOD"
	ConditionLikeNew InstanceCondition = "LIKE_NEW"
)

type InstanceStatus string

const (
	InstancePlaced     InstanceStatus = "PLACED"
	InstanceReserved   InstanceStatus = "RESERVED"
	InstanceReceived   InstanceStatus = "RECEIVED"
	InstanceModeration InstanceStatus = "MODERATION"
	InstanceReported   InstanceStatus = "REPORTED"
)

// BookInstance is a single physical copy of a Book listed for lending.
type BookInstance struct {
	ID          uuid.UUID         `json:"id"`
	BookID      uuid.UUID         `json:"book_id"`
	Description string            `json:"description"`
	Condition   InstanceCondition `json:"condition"`
	OwnerID     uuid.UUID         `json:"owner_id"`
	PhotoID     uuid.UUID         `json:"photo_id"`
	LocationID  uuid.UUID         `json:"location_id"`
	Status      InstanceStatus    `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}
