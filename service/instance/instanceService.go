package instancesvc

import (
	"context"
	"database/sql"
	"errors"

	"bookcrossing/model"

	"github.com/google/uuid"
)

type ErrCode string

const (
	ErrNotFound            ErrCode = "INSTANCE_NOT_FOUND"
	ErrBookNotFound        ErrCode = "BOOK_NOT_FOUND"
	ErrPhotoNotFound       ErrCode = "PHOTO_NOT_FOUND"
	ErrLocationNotFound    ErrCode = "LOCATION_NOT_FOUND"
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
	BookID      uuid.UUID
	Description string
	Condition   model.InstanceCondition
	PhotoID     uuid.UUID
	LocationID  uuid.UUID
}

// ModifyInput carries partial updates; nil fields keep previous values.
type ModifyInput struct {
	Description *string
	Condition   *model.InstanceCondition
	PhotoID     *uuid.UUID
	LocationID  *uuid.UUID
	Status      *model.InstanceStatus
}

type Repo interface {
	Create(ctx context.Context, tx *sql.Tx, inst *model.BookInstance) error
	ByID(ctx context.Context, id uuid.UUID) (*model.BookInstance, error)
	Update(ctx context.Context, inst *model.BookInstance) error
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status model.InstanceStatus) error
	AllByBookAndStatuses(ctx context.Context, bookID uuid.UUID, statuses []model.InstanceStatus) ([]model.BookInstance, error)
	AllByStatus(ctx context.Context, status model.InstanceStatus) ([]model.BookInstance, error)
	Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error
}

type BookRepo interface {
	ByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
}

type AttachmentRepo interface {
	ByID(ctx context.Context, id uuid.UUID) (*model.Attachment, error)
}

type LocationRepo interface {
	ByID(ctx context.Context, id uuid.UUID) (*model.Location, error)
}

type TransactionRepo interface {
	Create(ctx context.Context, tx *sql.Tx, t *model.Transaction) error
	DeleteAllByInstanceID(ctx context.Context, tx *sql.Tx, instanceID uuid.UUID) error
}

type ReservationRepo interface {
	DeleteAllByInstanceID(ctx context.Context, tx *sql.Tx, instanceID uuid.UUID) error
}

type ReportRepo interface {
	DeleteAllByInstanceID(ctx context.Context, tx *sql.Tx, instanceID uuid.UUID) error
}

type Service interface {
	ByBookID(ctx context.Context, bookID uuid.UUID, actor *model.User) ([]model.BookInstance, error)
	Create(ctx context.Context, actor model.User, in CreateInput) (*model.BookInstance, error)
	Get(ctx context.Context, id uuid.UUID) (*model.BookInstance, error)
	Modify(ctx context.Context, actor model.User, id uuid.UUID, in ModifyInput) (*model.BookInstance, error)
	Delete(ctx context.Context, actor model.User, id uuid.UUID) error
	Approve(ctx context.Context, actor model.User, id uuid.UUID) (*model.BookInstance, error)
	Reject(ctx context.Context, actor model.User, id uuid.UUID) error
	ModerationList(ctx context.Context, actor model.User) ([]model.BookInstance, error)
}

type service struct {
	db *sql.DB
	r  Repo
	br BookRepo
	ar AttachmentRepo
	lr LocationRepo
	tr TransactionRepo
	rr ReservationRepo
	pr ReportRepo
}

func New(db *sql.DB, r Repo, br BookRepo, ar AttachmentRepo, lr LocationRepo, tr TransactionRepo, rr ReservationRepo, pr ReportRepo) Service {
	return &service{db: db, r: r, br: br, ar: ar, lr: lr, tr: tr, rr: rr, pr: pr}
}

// ByBookID lists a book's copies. Admins also see copies that are reserved
// or under dispute; everyone else sees only what can be picked up.
func (s *service) ByBookID(ctx context.Context, bookID uuid.UUID, actor *model.User) ([]model.BookInstance, error) {
	b, err := s.br.ByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, makeErr(ErrBookNotFound)
	}

	statuses := []model.InstanceStatus{model.InstancePlaced}
	if actor != nil && actor.IsAdmin() {
		statuses = []model.InstanceStatus{model.InstancePlaced, model.InstanceReserved, model.InstanceReported}
	}
	return s.r.AllByBookAndStatuses(ctx, bookID, statuses)
}

func (s *service) Create(ctx context.Context, actor model.User, in CreateInput) (*model.BookInstance, error) {
	b, err := s.br.ByID(ctx, in.BookID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, makeErr(ErrBookNotFound)
	}
	photo, err := s.ar.ByID(ctx, in.PhotoID)
	if err != nil {
		return nil, err
	}
	if photo == nil {
		return nil, makeErr(ErrPhotoNotFound)
	}
	loc, err := s.lr.ByID(ctx, in.LocationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, makeErr(ErrLocationNotFound)
	}

	status := model.InstanceModeration
	if actor.IsAdmin() {
		status = model.InstancePlaced
	}

	inst := &model.BookInstance{
		BookID:      in.BookID,
		Description: in.Description,
		Condition:   in.Condition,
		OwnerID:     actor.ID,
		PhotoID:     in.PhotoID,
		LocationID:  in.LocationID,
		Status:      status,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.r.Create(ctx, tx, inst); err != nil {
		return nil, err
	}
	// An admin listing skips moderation, so the copy is lent out right away.
	if status == model.InstancePlaced {
		err = s.tr.Create(ctx, tx, &model.Transaction{
			Type:       model.TransactionLend,
			InstanceID: inst.ID,
			UserID:     actor.ID,
			CreatedAt:  inst.CreatedAt,
		})
		if err != nil {
			return nil, err
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return inst, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.BookInstance, error) {
	return s.getByID(ctx, id)
}

func (s *service) Modify(ctx context.Context, actor model.User, id uuid.UUID, in ModifyInput) (*model.BookInstance, error) {
	if !actor.IsAdmin() {
		return nil, makeErr(ErrAccessDenied)
	}

	inst, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.LocationID != nil {
		loc, err := s.lr.ByID(ctx, *in.LocationID)
		if err != nil {
			return nil, err
		}
		if loc == nil {
			return nil, makeErr(ErrLocationNotFound)
		}
		inst.LocationID = *in.LocationID
	}
	if in.PhotoID != nil {
		photo, err := s.ar.ByID(ctx, *in.PhotoID)
		if err != nil {
			return nil, err
		}
		if photo == nil {
			return nil, makeErr(ErrPhotoNotFound)
		}
		inst.PhotoID = *in.PhotoID
	}
	if in.Description != nil {
		inst.Description = *in.Description
	}
	if in.Condition != nil {
		inst.Condition = *in.Condition
	}
	if in.Status != nil {
		inst.Status = *in.Status
	}

	if err := s.r.Update(ctx, inst); err != nil {
		return nil, err
	}
	return inst, nil
}

// Delete removes the instance and cascades its transactions, reservations and
// reports in one all-or-nothing unit.
func (s *service) Delete(ctx context.Context, actor model.User, id uuid.UUID) error {
	inst, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && actor.ID != inst.OwnerID {
		return makeErr(ErrAccessDenied)
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

	if err = s.tr.DeleteAllByInstanceID(ctx, tx, id); err != nil {
		return err
	}
	// Reports reference reservations, so they go first.
	if err = s.pr.DeleteAllByInstanceID(ctx, tx, id); err != nil {
		return err
	}
	if err = s.rr.DeleteAllByInstanceID(ctx, tx, id); err != nil {
		return err
	}
	if err = s.r.Delete(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) Approve(ctx context.Context, actor model.User, id uuid.UUID) (*model.BookInstance, error) {
	if !actor.IsAdmin() {
		return nil, makeErr(ErrAccessDenied)
	}
	inst, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inst.Status != model.InstanceModeration {
		return nil, makeErr(ErrModerationNotNeeded)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.r.UpdateStatus(ctx, tx, id, model.InstancePlaced); err != nil {
		return nil, err
	}
	err = s.tr.Create(ctx, tx, &model.Transaction{
		Type:       model.TransactionLend,
		InstanceID: inst.ID,
		UserID:     inst.OwnerID,
		CreatedAt:  inst.CreatedAt,
	})
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	inst.Status = model.InstancePlaced
	return inst, nil
}

func (s *service) Reject(ctx context.Context, actor model.User, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return makeErr(ErrAccessDenied)
	}
	inst, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}
	if inst.Status != model.InstanceModeration {
		return makeErr(ErrModerationNotNeeded)
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
	if err = s.r.Delete(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) ModerationList(ctx context.Context, actor model.User) ([]model.BookInstance, error) {
	if !actor.IsAdmin() {
		return nil, makeErr(ErrAccessDenied)
	}
	return s.r.AllByStatus(ctx, model.InstanceModeration)
}

func (s *service) getByID(ctx context.Context, id uuid.UUID) (*model.BookInstance, error) {
	inst, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, makeErr(ErrNotFound)
	}
	return inst, nil
}
