package reservationsvc

import (
	"context"
	"database/sql"
	"errors"

	"bookcrossing/model"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type ErrCode string

const (
	ErrNotFound         ErrCode = "RESERVATION_NOT_FOUND"
	ErrInstanceNotFound ErrCode = "INSTANCE_NOT_FOUND"
	ErrAlreadyExists    ErrCode = "ALREADY_EXISTS"
	ErrNotAccessible    ErrCode = "NOT_ACCESSIBLE"
	ErrLimitReached     ErrCode = "RESERVATION_LIMIT"
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrConflict         ErrCode = "CONFLICT"
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

// maxOpenReservations bounds a user's outstanding holds.
const maxOpenReservations = 5

type Repo interface {
	Create(ctx context.Context, tx *sql.Tx, res *model.Reservation) error
	ByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	ByInstanceID(ctx context.Context, instanceID uuid.UUID) (*model.Reservation, error)
	AllByUserID(ctx context.Context, userID uuid.UUID) ([]model.Reservation, error)
	Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error
}

type InstanceRepo interface {
	ByID(ctx context.Context, id uuid.UUID) (*model.BookInstance, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status model.InstanceStatus) error
}

type TransactionRepo interface {
	Create(ctx context.Context, tx *sql.Tx, t *model.Transaction) error
}

type Service interface {
	Create(ctx context.Context, actor model.User, instanceID uuid.UUID) (*model.Reservation, error)
	ForUser(ctx context.Context, user model.User) ([]model.Reservation, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	Delete(ctx context.Context, actor model.User, id uuid.UUID) error
	Confirm(ctx context.Context, actor model.User, id uuid.UUID) error
}

type service struct {
	db *sql.DB
	r  Repo
	ir InstanceRepo
	tr TransactionRepo
}

func New(db *sql.DB, r Repo, ir InstanceRepo, tr TransactionRepo) Service {
	return &service{db: db, r: r, ir: ir, tr: tr}
}

// Create places a hold on a PLACED instance. Uniqueness per instance is
// checked up front and enforced for real by the reservations.instance_id
// unique constraint, which serializes two users racing for the same copy.
func (s *service) Create(ctx context.Context, actor model.User, instanceID uuid.UUID) (*model.Reservation, error) {
	inst, err := s.ir.ByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, makeErr(ErrInstanceNotFound)
	}
	if inst.Status != model.InstancePlaced {
		return nil, makeErr(ErrNotAccessible)
	}

	existing, err := s.r.ByInstanceID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, makeErr(ErrAlreadyExists)
	}

	open, err := s.r.AllByUserID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if len(open) >= maxOpenReservations {
		return nil, makeErr(ErrLimitReached)
	}

	res := &model.Reservation{InstanceID: instanceID, UserID: actor.ID}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.ir.UpdateStatus(ctx, tx, instanceID, model.InstanceReserved); err != nil {
		return nil, err
	}
	if err = s.r.Create(ctx, tx, res); err != nil {
		if isUniqueViolation(err) {
			err = makeErr(ErrAlreadyExists)
		}
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *service) ForUser(ctx context.Context, user model.User) ([]model.Reservation, error) {
	return s.r.AllByUserID(ctx, user.ID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	return s.getByID(ctx, id)
}

// Delete cancels a hold and puts the copy back up. Cancellation is not an
// audited event; no transaction is recorded.
func (s *service) Delete(ctx context.Context, actor model.User, id uuid.UUID) error {
	res, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}
	if res.UserID != actor.ID && !actor.IsAdmin() {
		return makeErr(ErrForbidden)
	}
	inst, err := s.ir.ByID(ctx, res.InstanceID)
	if err != nil {
		return err
	}
	if inst == nil {
		return makeErr(ErrInstanceNotFound)
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

	if err = s.ir.UpdateStatus(ctx, tx, inst.ID, model.InstancePlaced); err != nil {
		return err
	}
	if err = s.r.Delete(ctx, tx, id); err != nil {
		// A report row still pointing at the hold blocks the delete.
		if isIntegrityViolation(err) {
			err = makeErr(ErrConflict)
		}
		return err
	}
	return tx.Commit()
}

// Confirm records the handover: a BORROW transaction tagged to the confirming
// user, the instance advances to RECEIVED and the hold is consumed.
func (s *service) Confirm(ctx context.Context, actor model.User, id uuid.UUID) error {
	res, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}
	if res.UserID != actor.ID && !actor.IsAdmin() {
		return makeErr(ErrForbidden)
	}
	inst, err := s.ir.ByID(ctx, res.InstanceID)
	if err != nil {
		return err
	}
	if inst == nil {
		return makeErr(ErrInstanceNotFound)
	}
	// A report or other status change in the meantime invalidates the hold.
	if inst.Status != model.InstanceReserved {
		return makeErr(ErrForbidden)
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

	err = s.tr.Create(ctx, tx, &model.Transaction{
		Type:       model.TransactionBorrow,
		InstanceID: res.InstanceID,
		UserID:     actor.ID,
	})
	if err != nil {
		return err
	}
	if err = s.ir.UpdateStatus(ctx, tx, inst.ID, model.InstanceReceived); err != nil {
		return err
	}
	if err = s.r.Delete(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) getByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	res, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, makeErr(ErrNotFound)
	}
	return res, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func isIntegrityViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code)
}
