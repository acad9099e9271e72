// model/book.go
package model

import "github.com/google/uuid"

type BookCover string

const (
	CoverHard BookCover = "HARD"
	CoverSoft BookCover = "SOFT"
)

type BookSize string

const (
	SizeSmall  BookSize = "SMALL"
	SizeMedium BookSize = "MEDIUM"
	SizeLarge  BookSize = "LARGE"
)

type BookStatus string

const (
	BookModeration BookStatus = "MODERATION"
	BookActive     BookStatus = "ACTIVE"
)

type Book struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Author            string     `json:"author"`
	ISBN              *string    `json:"isbn,omitempty"` // 13 digits, no dashes
	Genre             string     `json:"genre"`
	EditionYear       int        `json:"edition_year"`
	PublishingCompany string     `json:"publishing_company"`
	Language          string     `json:"language"`
	Cover             BookCover  `json:"cover"`
	Pages             int        `json:"pages"`
	Size              BookSize   `json:"size"`
	CoverID           uuid.UUID  `json:"cover_id"`
	Status            BookStatus `json:"status"`
}
