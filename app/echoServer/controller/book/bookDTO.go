package book

import (
	"bookcrossing/model"

	"github.com/google/uuid"
)

type CreateBookReq struct {
	Name              string    `json:"name" validate:"required"`
	Author            string    `json:"author" validate:"required"`
	ISBN              *string   `json:"isbn" validate:"omitempty,len=13,numeric"`
	Genre             string    `json:"genre" validate:"required"`
	EditionYear       int       `json:"edition_year" validate:"required,gt=0"`
	PublishingCompany string    `json:"publishing_company" validate:"required"`
	Language          string    `json:"language" validate:"required"`
	Cover             string    `json:"cover" validate:"required,oneof=HARD SOFT"`
	Pages             int       `json:"pages" validate:"required,gt=0"`
	Size              string    `json:"size" validate:"required,oneof=SMALL MEDIUM LARGE"`
	CoverID           uuid.UUID `json:"cover_id" validate:"required"`
}

type ModifyBookReq struct {
	Name              *string    `json:"name"`
	Author            *string    `json:"author"`
	ISBN              *string    `json:"isbn" validate:"omitempty,len=13,numeric"`
	Genre             *string    `json:"genre"`
	EditionYear       *int       `json:"edition_year" validate:"omitempty,gt=0"`
	PublishingCompany *string    `json:"publishing_company"`
	Language          *string    `json:"language"`
	Cover             *string    `json:"cover" validate:"omitempty,oneof=HARD SOFT"`
	Pages             *int       `json:"pages" validate:"omitempty,gt=0"`
	Size              *string    `json:"size" validate:"omitempty,oneof=SMALL MEDIUM LARGE"`
	CoverID           *uuid.UUID `json:"cover_id"`
}

func coverPtr(s *string) *model.BookCover {
	if s == nil {
		return nil
	}
	c := model.BookCover(*s)
	return &c
}

func sizePtr(s *string) *model.BookSize {
	if s == nil {
		return nil
	}
	sz := model.BookSize(*s)
	return &sz
}
