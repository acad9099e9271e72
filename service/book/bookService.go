package booksvc

import (
	"context"
	"database/sql"
	"errors"

	"bookcrossing/model"

	"github.com/google/uuid"
)

type ErrCode string

const (
	ErrNotFound            ErrCode = "BOOK_NOT_FOUND"
	ErrAttachmentNotFound  ErrCode = "ATTACHMENT_NOT_FOUND"
	ErrModerationNotNeeded ErrCode = "MODERATION_NOT_NEEDED"
	ErrAccessDenied        ErrCode = "ACCESS_DENIED"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type CreateInput struct {
	Name              string
	Author            string
	ISBN              *string
	Genre             string
	EditionYear       int
	PublishingCompany string
	Language          string
	Cover             model.BookCover
	Pages             int
	Size              model.BookSize
	CoverID           uuid.UUID
}

// ModifyInput carries partial updates; nil fields keep previous values.
type ModifyInput struct {
	Name              *string
	Author            *string
	ISBN              *string
	Genre             *string
	EditionYear       *int
	PublishingCompany *string
	Language          *string
	Cover             *model.BookCover
	Pages             *int
	Size              *model.BookSize
	CoverID           *uuid.UUID
}

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	Update(ctx context.Context, b *model.Book) error
	ByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	All(ctx context.Context) ([]model.Book, error)
	AllByIDsAndStatus(ctx context.Context, ids []uuid.UUID, status model.BookStatus) ([]model.Book, error)
	AllByStatus(ctx context.Context, status model.BookStatus) ([]model.Book, error)
	Search(ctx context.Context, query string, limit int) ([]model.Book, error)
	Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error

	Favorite(ctx context.Context, userID, bookID uuid.UUID) error
	Unfavorite(ctx context.Context, userID, bookID uuid.UUID) error
	FavoriteBookIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	DeleteFavoritesByBookID(ctx context.Context, tx *sql.Tx, bookID uuid.UUID) error
}

type AttachmentRepo interface {
	ByID(ctx context.Context, id uuid.UUID) (*model.Attachment, error)
}

type InstanceRepo interface {
	AllByBookID(ctx context.Context, bookID uuid.UUID) ([]model.BookInstance, error)
	Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error
}

type TransactionRepo interface {
	DeleteAllByInstanceIDs(ctx context.Context, tx *sql.Tx, instanceIDs []uuid.UUID) error
}

type ReservationRepo interface {
	DeleteAllByInstanceID(ctx context.Context, tx *sql.Tx, instanceID uuid.UUID) error
}

type ReportRepo interface {
	DeleteAllByInstanceID(ctx context.Context, tx *sql.Tx, instanceID uuid.UUID) error
}

type Service interface {
	All(ctx context.Context, actor model.User) ([]model.Book, error)
	Create(ctx context.Context, actor model.User, in CreateInput) (*model.Book, error)
	Modify(ctx context.Context, actor model.User, id uuid.UUID, in ModifyInput) (*model.Book, error)
	Delete(ctx context.Context, actor model.User, id uuid.UUID) error
	Search(ctx context.Context, query string) ([]model.Book, error)
	ByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	Approve(ctx context.Context, actor model.User, id uuid.UUID) (*model.Book, error)
	Reject(ctx context.Context, actor model.User, id uuid.UUID) error
	Favorite(ctx context.Context, actor model.User, bookID uuid.UUID) error
	Unfavorite(ctx context.Context, actor model.User, bookID uuid.UUID) error
	UserFavorites(ctx context.Context, user model.User) ([]model.Book, error)
	ModerationList(ctx context.Context, actor model.User) ([]model.Book, error)
}

type service struct {
	db *sql.DB
	r  Repo
	ar AttachmentRepo
	ir InstanceRepo
	tr TransactionRepo
	rr ReservationRepo
	pr ReportRepo
}

func New(db *sql.DB, r Repo, ar AttachmentRepo, ir InstanceRepo, tr TransactionRepo, rr ReservationRepo, pr ReportRepo) Service {
	return &service{db: db, r: r, ar: ar, ir: ir, tr: tr, rr: rr, pr: pr}
}

func (s *service) All(ctx context.Context, actor model.User) ([]model.Book, error) {
	if !actor.IsAdmin() {
		return nil, makeErr(ErrAccessDenied)
	}
	return s.r.All(ctx)
}

// Create registers a book. Admin submissions go live immediately; everyone
// else lands in the moderation queue.
func (s *service) Create(ctx context.Context, actor model.User, in CreateInput) (*model.Book, error) {
	cover, err := s.ar.ByID(ctx, in.CoverID)
	if err != nil {
		return nil, err
	}
	if cover == nil {
		return nil, makeErr(ErrAttachmentNotFound)
	}

	status := model.BookModeration
	if actor.IsAdmin() {
		status = model.BookActive
	}

	b := &model.Book{
		Name:              in.Name,
		Author:            in.Author,
		ISBN:              in.ISBN,
		Genre:             in.Genre,
		EditionYear:       in.EditionYear,
		PublishingCompany: in.PublishingCompany,
		Language:          in.Language,
		Cover:             in.Cover,
		Pages:             in.Pages,
		Size:              in.Size,
		CoverID:           in.CoverID,
		Status:            status,
	}
	if err := s.r.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Modify(ctx context.Context, actor model.User, id uuid.UUID, in ModifyInput) (*model.Book, error) {
	if !actor.IsAdmin() {
		return nil, makeErr(ErrAccessDenied)
	}

	b, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.CoverID != nil {
		cover, err := s.ar.ByID(ctx, *in.CoverID)
		if err != nil {
			return nil, err
		}
		if cover == nil {
			return nil, makeErr(ErrAttachmentNotFound)
		}
		b.CoverID = *in.CoverID
	}
	if in.Name != nil {
		b.Name = *in.Name
	}
	if in.Author != nil {
		b.Author = *in.Author
	}
	if in.ISBN != nil {
		b.ISBN = in.ISBN
	}
	if in.Genre != nil {
		b.Genre = *in.Genre
	}
	if in.EditionYear != nil {
		b.EditionYear = *in.EditionYear
	}
	if in.PublishingCompany != nil {
		b.PublishingCompany = *in.PublishingCompany
	}
	if in.Language != nil {
		b.Language = *in.Language
	}
	if in.Cover != nil {
		b.Cover = *in.Cover
	}
	if in.Pages != nil {
		b.Pages = *in.Pages
	}
	if in.Size != nil {
		b.Size = *in.Size
	}

	if err := s.r.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Delete removes the book together with its instances and everything hanging
// off them, in one transaction.
func (s *service) Delete(ctx context.Context, actor model.User, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return makeErr(ErrAccessDenied)
	}
	if _, err := s.getByID(ctx, id); err != nil {
		return err
	}

	instances, err := s.ir.AllByBookID(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	instIDs := make([]uuid.UUID, len(instances))
	for i, inst := range instances {
		instIDs[i] = inst.ID
	}
	if err = s.tr.DeleteAllByInstanceIDs(ctx, tx, instIDs); err != nil {
		return err
	}
	for _, inst := range instances {
		if err = s.pr.DeleteAllByInstanceID(ctx, tx, inst.ID); err != nil {
			return err
		}
		if err = s.rr.DeleteAllByInstanceID(ctx, tx, inst.ID); err != nil {
			return err
		}
		if err = s.ir.Delete(ctx, tx, inst.ID); err != nil {
			return err
		}
	}
	if err = s.r.DeleteFavoritesByBookID(ctx, tx, id); err != nil {
		return err
	}
	if err = s.r.Delete(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) Search(ctx context.Context, query string) ([]model.Book, error) {
	return s.r.Search(ctx, query, 10)
}

func (s *service) ByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return s.getByID(ctx, id)
}

func (s *service) Approve(ctx context.Context, actor model.User, id uuid.UUID) (*model.Book, error) {
	if !actor.IsAdmin() {
		return nil, makeErr(ErrAccessDenied)
	}
	b, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != model.BookModeration {
		return nil, makeErr(ErrModerationNotNeeded)
	}
	b.Status = model.BookActive
	if err := s.r.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Reject(ctx context.Context, actor model.User, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return makeErr(ErrAccessDenied)
	}
	b, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}
	if b.Status != model.BookModeration {
		return makeErr(ErrModerationNotNeeded)
	}
	return s.Delete(ctx, actor, id)
}

// Favorite is idempotent; favoriting twice is a no-op.
func (s *service) Favorite(ctx context.Context, actor model.User, bookID uuid.UUID) error {
	if err := s.requireActive(ctx, bookID); err != nil {
		return err
	}
	return s.r.Favorite(ctx, actor.ID, bookID)
}

func (s *service) Unfavorite(ctx context.Context, actor model.User, bookID uuid.UUID) error {
	if err := s.requireActive(ctx, bookID); err != nil {
		return err
	}
	return s.r.Unfavorite(ctx, actor.ID, bookID)
}

func (s *service) UserFavorites(ctx context.Context, user model.User) ([]model.Book, error) {
	ids, err := s.r.FavoriteBookIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.r.AllByIDsAndStatus(ctx, ids, model.BookActive)
}

func (s *service) ModerationList(ctx context.Context, actor model.User) ([]model.Book, error) {
	if !actor.IsAdmin() {
		return nil, makeErr(ErrAccessDenied)
	}
	return s.r.AllByStatus(ctx, model.BookModeration)
}

func (s *service) getByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	b, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, makeErr(ErrNotFound)
	}
	return b, nil
}

// Books in MODERATION are invisible outside the admin surface.
func (s *service) requireActive(ctx context.Context, id uuid.UUID) error {
	b, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}
	if b.Status != model.BookActive {
		return makeErr(ErrNotFound)
	}
	return nil
}
