package usersvc

import (
	"context"
	"database/sql"
	"testing"

	"bookcrossing/model"
	"bookcrossing/service/session"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	byIDFn       func(ctx context.Context, id uuid.UUID) (*model.User, error)
	allFn        func(ctx context.Context) ([]model.User, error)
	updateNameFn func(ctx context.Context, id uuid.UUID, name string) error
	deleteFn     func(ctx context.Context, tx *sql.Tx, id uuid.UUID) error
}

var _ Repo = (*mockRepo)(nil)

func (m *mockRepo) ByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if m.byIDFn == nil {
		return nil, nil
	}
	return m.byIDFn(ctx, id)
}

func (m *mockRepo) All(ctx context.Context) ([]model.User, error) {
	if m.allFn == nil {
		return nil, nil
	}
	return m.allFn(ctx)
}

func (m *mockRepo) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	if m.updateNameFn == nil {
		return nil
	}
	return m.updateNameFn(ctx, id, name)
}

func (m *mockRepo) Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, tx, id)
}

type mockReservationRepo struct {
	allByUserIDFn       func(ctx context.Context, userID uuid.UUID) ([]model.Reservation, error)
	deleteAllByUserIDFn func(ctx context.Context, tx *sql.Tx, userID uuid.UUID) error
}

var _ ReservationRepo = (*mockReservationRepo)(nil)

func (m *mockReservationRepo) AllByUserID(ctx context.Context, userID uuid.UUID) ([]model.Reservation, error) {
	if m.allByUserIDFn == nil {
		return nil, nil
	}
	return m.allByUserIDFn(ctx, userID)
}

func (m *mockReservationRepo) DeleteAllByUserID(ctx context.Context, tx *sql.Tx, userID uuid.UUID) error {
	if m.deleteAllByUserIDFn == nil {
		return nil
	}
	return m.deleteAllByUserIDFn(ctx, tx, userID)
}

type mockInstanceRepo struct {
	updateStatusFn func(ctx context.Context, tx *sql.Tx, id uuid.UUID, status model.InstanceStatus) error
}

var _ InstanceRepo = (*mockInstanceRepo)(nil)

func (m *mockInstanceRepo) UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status model.InstanceStatus) error {
	if m.updateStatusFn == nil {
		return nil
	}
	return m.updateStatusFn(ctx, tx, id, status)
}

type mockReportRepo struct {
	deleteAllByUserIDFn func(ctx context.Context, tx *sql.Tx, userID uuid.UUID) error
}

var _ ReportRepo = (*mockReportRepo)(nil)

func (m *mockReportRepo) DeleteAllByUserID(ctx context.Context, tx *sql.Tx, userID uuid.UUID) error {
	if m.deleteAllByUserIDFn == nil {
		return nil
	}
	return m.deleteAllByUserIDFn(ctx, tx, userID)
}

type mockFavoriteRepo struct {
	deleteFavoritesByUserIDFn func(ctx context.Context, tx *sql.Tx, userID uuid.UUID) error
}

var _ FavoriteRepo = (*mockFavoriteRepo)(nil)

func (m *mockFavoriteRepo) DeleteFavoritesByUserID(ctx context.Context, tx *sql.Tx, userID uuid.UUID) error {
	if m.deleteFavoritesByUserIDFn == nil {
		return nil
	}
	return m.deleteFavoritesByUserIDFn(ctx, tx, userID)
}

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func existingUser(id uuid.UUID) *mockRepo {
	return &mockRepo{
		byIDFn: func(ctx context.Context, gotID uuid.UUID) (*model.User, error) {
			return &model.User{ID: gotID, Email: "x@y.z", Role: model.RoleUser}, nil
		},
	}
}

func TestDelete_ReleasesHeldInstances(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	userID := uuid.New()
	instA, instB := uuid.New(), uuid.New()

	rr := &mockReservationRepo{
		allByUserIDFn: func(ctx context.Context, id uuid.UUID) ([]model.Reservation, error) {
			return []model.Reservation{
				{ID: uuid.New(), InstanceID: instA, UserID: id},
				{ID: uuid.New(), InstanceID: instB, UserID: id},
			}, nil
		},
	}
	released := map[uuid.UUID]model.InstanceStatus{}
	ir := &mockInstanceRepo{
		updateStatusFn: func(ctx context.Context, tx *sql.Tx, id uuid.UUID, status model.InstanceStatus) error {
			released[id] = status
			return nil
		},
	}
	sessions := session.NewMemory()
	sessions.Register(userID, "jti-1")

	s := New(db, existingUser(userID), rr, ir, &mockReportRepo{}, &mockFavoriteRepo{}, sessions)
	actor := model.User{ID: userID, Role: model.RoleUser}
	require.NoError(t, s.Delete(context.Background(), actor, userID))

	require.Equal(t, model.InstancePlaced, released[instA])
	require.Equal(t, model.InstancePlaced, released[instB])
	require.False(t, sessions.Valid("jti-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_DanglingReferenceIsConflict(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	userID := uuid.New()
	r := existingUser(userID)
	r.deleteFn = func(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
		return &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}
	}
	sessions := session.NewMemory()
	sessions.Register(userID, "jti-1")

	s := New(db, r, &mockReservationRepo{}, &mockInstanceRepo{}, &mockReportRepo{}, &mockFavoriteRepo{}, sessions)
	actor := model.User{ID: userID, Role: model.RoleUser}
	err := s.Delete(context.Background(), actor, userID)

	require.Equal(t, ErrConflict, Code(err))
	require.True(t, sessions.Valid("jti-1"), "sessions survive a failed delete")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_ForbiddenForStranger(t *testing.T) {
	s := New(nil, &mockRepo{}, &mockReservationRepo{}, &mockInstanceRepo{}, &mockReportRepo{}, &mockFavoriteRepo{}, session.NewMemory())
	actor := model.User{ID: uuid.New(), Role: model.RoleUser}
	err := s.Delete(context.Background(), actor, uuid.New())
	require.Equal(t, ErrForbidden, Code(err))
}
