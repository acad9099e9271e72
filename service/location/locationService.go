package locationsvc

import (
	"context"
	"database/sql"
	"errors"

	"bookcrossing/model"

	"github.com/google/uuid"
)

type ErrCode string

const (
	ErrNotFound  ErrCode = "LOCATION_NOT_FOUND"
	ErrForbidden ErrCode = "FORBIDDEN"
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
	Create(ctx context.Context, loc *model.Location) error
	ByID(ctx context.Context, id uuid.UUID) (*model.Location, error)
	All(ctx context.Context) ([]model.Location, error)
	Update(ctx context.Context, loc *model.Location) error
	Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error
}

type InstanceRepo interface {
	AllByLocationID(ctx context.Context, locationID uuid.UUID) ([]model.BookInstance, error)
	Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error
}

type ReservationRepo interface {
	DeleteAllByInstanceID(ctx context.Context, tx *sql.Tx, instanceID uuid.UUID) error
}

type ReportRepo interface {
	DeleteAllByInstanceID(ctx context.Context, tx *sql.Tx, instanceID uuid.UUID) error
}

type TransactionRepo interface {
	DeleteAllByInstanceIDs(ctx context.Context, tx *sql.Tx, instanceIDs []uuid.UUID) error
}

type CreateInput struct {
	Address string `json:"address" validate:"required"`
	Extra   string `json:"extra"`
	Name    string `json:"name" validate:"required"`
	Limit   int    `json:"limit" validate:"required,gt=0"`
}

// ModifyInput deliberately has no address field; a point that moved is a new
// point.
type ModifyInput struct {
	Extra *string `json:"extra"`
	Name  *string `json:"name"`
	Limit *int    `json:"limit" validate:"omitempty,gt=0"`
}

type Service interface {
	All(ctx context.Context) ([]model.Location, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Location, error)
	Create(ctx context.Context, actor model.User, in CreateInput) (*model.Location, error)
	Modify(ctx context.Context, actor model.User, id uuid.UUID, in ModifyInput) (*model.Location, error)
	Delete(ctx context.Context, actor model.User, id uuid.UUID) error
}

type service struct {
	db  *sql.DB
	r   Repo
	ir  InstanceRepo
	rr  ReservationRepo
	rpr ReportRepo
	tr  TransactionRepo
}

func New(db *sql.DB, r Repo, ir InstanceRepo, rr ReservationRepo, rpr ReportRepo, tr TransactionRepo) Service {
	return &service{db: db, r: r, ir: ir, rr: rr, rpr: rpr, tr: tr}
}

func (s *service) All(ctx context.Context) ([]model.Location, error) {
	return s.r.All(ctx)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	return s.getByID(ctx, id)
}

func (s *service) Create(ctx context.Context, actor model.User, in CreateInput) (*model.Location, error) {
	if !actor.IsAdmin() {
		return nil, makeErr(ErrForbidden)
	}
	loc := &model.Location{
		Address: in.Address,
		Extra:   in.Extra,
		Name:    in.Name,
		Limit:   in.Limit,
	}
	if err := s.r.Create(ctx, loc); err != nil {
		return nil, err
	}
	return loc, nil
}

func (s *service) Modify(ctx context.Context, actor model.User, id uuid.UUID, in ModifyInput) (*model.Location, error) {
	if !actor.IsAdmin() {
		return nil, makeErr(ErrForbidden)
	}
	loc, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Extra != nil {
		loc.Extra = *in.Extra
	}
	if in.Name != nil {
		loc.Name = *in.Name
	}
	if in.Limit != nil {
		loc.Limit = *in.Limit
	}
	if err := s.r.Update(ctx, loc); err != nil {
		return nil, err
	}
	return loc, nil
}

// Delete removes the point and every copy stored there, each with its
// reports, reservations and audit records. All or nothing.
func (s *service) Delete(ctx context.Context, actor model.User, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return makeErr(ErrForbidden)
	}
	if _, err := s.getByID(ctx, id); err != nil {
		return err
	}
	insts, err := s.ir.AllByLocationID(ctx, id)
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

	instIDs := make([]uuid.UUID, len(insts))
	for i, inst := range insts {
		instIDs[i] = inst.ID
	}
	if err = s.tr.DeleteAllByInstanceIDs(ctx, tx, instIDs); err != nil {
		return err
	}
	for _, inst := range insts {
		if err = s.rpr.DeleteAllByInstanceID(ctx, tx, inst.ID); err != nil {
			return err
		}
		if err = s.rr.DeleteAllByInstanceID(ctx, tx, inst.ID); err != nil {
			return err
		}
		if err = s.ir.Delete(ctx, tx, inst.ID); err != nil {
			return err
		}
	}
	if err = s.r.Delete(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) getByID(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	loc, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, makeErr(ErrNotFound)
	}
	return loc, nil
}
