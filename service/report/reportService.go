package reportsvc

import (
	"context"
	"database/sql"
	"errors"

	"bookcrossing/model"

	"github.com/google/uuid"
)

type ErrCode string

const (
	ErrNotFound            ErrCode = "REPORT_NOT_FOUND"
	ErrReservationNotFound ErrCode = "RESERVATION_NOT_FOUND"
	ErrForbidden           ErrCode = "FORBIDDEN"
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

type Repo interface {
	Create(ctx context.Context, tx *sql.Tx, rep *model.Report) error
	ByID(ctx context.Context, id uuid.UUID) (*model.Report, error)
	All(ctx context.Context) ([]model.Report, error)
	Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error
}

type ReservationRepo interface {
	ByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
}

type InstanceRepo interface {
	ByID(ctx context.Context, id uuid.UUID) (*model.BookInstance, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status model.InstanceStatus) error
}

// InstanceDeleter removes an instance together with everything hanging off
// it. Approving a report delegates here so the cascade lives in one place.
type InstanceDeleter interface {
	Delete(ctx context.Context, actor model.User, id uuid.UUID) error
}

type Service interface {
	All(ctx context.Context, actor model.User) ([]model.Report, error)
	Create(ctx context.Context, actor model.User, reservationID uuid.UUID, message string) (*model.Report, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Report, error)
	Approve(ctx context.Context, actor model.User, id uuid.UUID) error
	Reject(ctx context.Context, actor model.User, id uuid.UUID) error
}

type service struct {
	db *sql.DB
	r  Repo
	rr ReservationRepo
	ir InstanceRepo
	id InstanceDeleter
}

func New(db *sql.DB, r Repo, rr ReservationRepo, ir InstanceRepo, id InstanceDeleter) Service {
	return &service{db: db, r: r, rr: rr, ir: ir, id: id}
}

func (s *service) All(ctx context.Context, actor model.User) ([]model.Report, error) {
	if !actor.IsAdmin() {
		return nil, makeErr(ErrForbidden)
	}
	return s.r.All(ctx)
}

// Create files a complaint against a reserved copy. The reservation survives
// so the hold can be restored if moderation dismisses the report.
func (s *service) Create(ctx context.Context, actor model.User, reservationID uuid.UUID, message string) (*model.Report, error) {
	res, err := s.rr.ByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, makeErr(ErrReservationNotFound)
	}
	if res.UserID != actor.ID {
		return nil, makeErr(ErrForbidden)
	}
	inst, err := s.ir.ByID(ctx, res.InstanceID)
	if err != nil {
		return nil, err
	}
	// A copy that is not on hold cannot be complained about.
	if inst == nil || inst.Status != model.InstanceReserved {
		return nil, makeErr(ErrForbidden)
	}

	rep := &model.Report{ReservationID: reservationID, Text: message}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.ir.UpdateStatus(ctx, tx, inst.ID, model.InstanceReported); err != nil {
		return nil, err
	}
	if err = s.r.Create(ctx, tx, rep); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return rep, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	return s.getByID(ctx, id)
}

// Approve upholds the report: the offending copy is removed entirely, taking
// the report and the underlying reservation with it.
func (s *service) Approve(ctx context.Context, actor model.User, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return makeErr(ErrForbidden)
	}
	rep, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}
	res, err := s.rr.ByID(ctx, rep.ReservationID)
	if err != nil {
		return err
	}
	if res == nil {
		return makeErr(ErrReservationNotFound)
	}
	return s.id.Delete(ctx, actor, res.InstanceID)
}

// Reject dismisses the report and restores the hold as it was.
func (s *service) Reject(ctx context.Context, actor model.User, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return makeErr(ErrForbidden)
	}
	rep, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}
	res, err := s.rr.ByID(ctx, rep.ReservationID)
	if err != nil {
		return err
	}
	if res == nil {
		return makeErr(ErrReservationNotFound)
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

	if err = s.ir.UpdateStatus(ctx, tx, res.InstanceID, model.InstanceReserved); err != nil {
		return err
	}
	if err = s.r.Delete(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) getByID(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	rep, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, makeErr(ErrNotFound)
	}
	return rep, nil
}
