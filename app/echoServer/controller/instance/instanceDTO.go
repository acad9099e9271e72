package instance

import (
	"bookcrossing/model"

	"github.com/google/uuid"
)

type CreateInstanceReq struct {
	BookID      uuid.UUID `json:"book_id" validate:"required"`
	Description string    `json:"description"`
	Condition   string    `json:"condition" validate:"required,oneof=BAD MEDIUM GOOD LIKE_NEW"`
	PhotoID     uuid.UUID `json:"photo_id" validate:"required"`
	LocationID  uuid.UUID `json:"location_id" validate:"required"`
}

type ModifyInstanceReq struct {
	Description *string    `json:"description"`
	Condition   *string    `json:"condition" validate:"omitempty,oneof=BAD MEDIUM GOOD LIKE_NEW"`
	PhotoID     *uuid.UUID `json:"photo_id"`
	LocationID  *uuid.UUID `json:"location_id"`
	Status      *string    `json:"status" validate:"omitempty,oneof=PLACED RESERVED RECEIVED MODERATION REPORTED"`
}

func conditionPtr(s *string) *model.InstanceCondition {
	if s == nil {
		return nil
	}
	c := model.InstanceCondition(*s)
	return &c
}

func statusPtr(s *string) *model.InstanceStatus {
	if s == nil {
		return nil
	}
	st := model.InstanceStatus(*s)
	return &st
}
