package usersvc

import (
	"context"
	"database/sql"
	"errors"

	"bookcrossing/model"
	"bookcrossing/service/session"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type ErrCode string

const (
	ErrNotFound  ErrCode = "USER_NOT_FOUND"
	ErrForbidden ErrCode = "FORBIDDEN"
	ErrConflict  ErrCode = "CONFLICT"
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
	ByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	All(ctx context.Context) ([]model.User, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error
}

type ReservationRepo interface {
	AllByUserID(ctx context.Context, userID uuid.UUID) ([]model.Reservation, error)
	DeleteAllByUserID(ctx context.Context, tx *sql.Tx, userID uuid.UUID) error
}

type InstanceRepo interface {
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status model.InstanceStatus) error
}

type ReportRepo interface {
	DeleteAllByUserID(ctx context.Context, tx *sql.Tx, userID uuid.UUID) error
}

type FavoriteRepo interface {
	DeleteFavoritesByUserID(ctx context.Context, tx *sql.Tx, userID uuid.UUID) error
}

type Service interface {
	All(ctx context.Context, actor model.User) ([]model.User, error)
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateName(ctx context.Context, actor model.User, name string) (*model.User, error)
	Delete(ctx context.Context, actor model.User, id uuid.UUID) error
}

type service struct {
	db       *sql.DB
	r        Repo
	rr       ReservationRepo
	ir       InstanceRepo
	rpr      ReportRepo
	fr       FavoriteRepo
	sessions session.Store
}

func New(db *sql.DB, r Repo, rr ReservationRepo, ir InstanceRepo, rpr ReportRepo, fr FavoriteRepo, sessions session.Store) Service {
	return &service{db: db, r: r, rr: rr, ir: ir, rpr: rpr, fr: fr, sessions: sessions}
}

func (s *service) All(ctx context.Context, actor model.User) ([]model.User, error) {
	if !actor.IsAdmin() {
		return nil, makeErr(ErrForbidden)
	}
	return s.r.All(ctx)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, makeErr(ErrNotFound)
	}
	return u, nil
}

func (s *service) UpdateName(ctx context.Context, actor model.User, name string) (*model.User, error) {
	if err := s.r.UpdateName(ctx, actor.ID, name); err != nil {
		return nil, err
	}
	actor.Name = name
	return &actor, nil
}

// Delete removes an account and its dangling state. Copies the user had on
// hold go back up as PLACED. Rows that still reference the account through a
// constraint the cleanup does not cover surface as a conflict, not a crash.
// Every live token of the account stops working immediately.
func (s *service) Delete(ctx context.Context, actor model.User, id uuid.UUID) error {
	if actor.ID != id && !actor.IsAdmin() {
		return makeErr(ErrForbidden)
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	held, err := s.rr.AllByUserID(ctx, id)
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

	if err = s.purge(ctx, tx, id, held); err == nil {
		err = tx.Commit()
	}
	if err != nil {
		if isIntegrityViolation(err) {
			err = makeErr(ErrConflict)
		}
		return err
	}
	s.sessions.RevokeUser(id)
	return nil
}

func (s *service) purge(ctx context.Context, tx *sql.Tx, id uuid.UUID, held []model.Reservation) error {
	if err := s.rpr.DeleteAllByUserID(ctx, tx, id); err != nil {
		return err
	}
	for _, res := range held {
		if err := s.ir.UpdateStatus(ctx, tx, res.InstanceID, model.InstancePlaced); err != nil {
			return err
		}
	}
	if err := s.rr.DeleteAllByUserID(ctx, tx, id); err != nil {
		return err
	}
	if err := s.fr.DeleteFavoritesByUserID(ctx, tx, id); err != nil {
		return err
	}
	return s.r.Delete(ctx, tx, id)
}

func isIntegrityViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code)
}
