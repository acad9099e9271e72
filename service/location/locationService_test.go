package locationsvc

import (
	"context"
	"database/sql"
	"testing"

	"bookcrossing/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	createFn func(ctx context.Context, loc *model.Location) error
	byIDFn   func(ctx context.Context, id uuid.UUID) (*model.Location, error)
	allFn    func(ctx context.Context) ([]model.Location, error)
	updateFn func(ctx context.Context, loc *model.Location) error
	deleteFn func(ctx context.Context, tx *sql.Tx, id uuid.UUID) error
}

var _ Repo = (*mockRepo)(nil)

func (m *mockRepo) Create(ctx context.Context, loc *model.Location) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, loc)
}

func (m *mockRepo) ByID(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	if m.byIDFn == nil {
		return nil, nil
	}
	return m.byIDFn(ctx, id)
}

func (m *mockRepo) All(ctx context.Context) ([]model.Location, error) {
	if m.allFn == nil {
		return nil, nil
	}
	return m.allFn(ctx)
}

func (m *mockRepo) Update(ctx context.Context, loc *model.Location) error {
	if m.updateFn == nil {
		return nil
	}
	return m.updateFn(ctx, loc)
}

func (m *mockRepo) Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, tx, id)
}

type mockInstanceRepo struct {
	allByLocationIDFn func(ctx context.Context, locationID uuid.UUID) ([]model.BookInstance, error)
	deleteFn          func(ctx context.Context, tx *sql.Tx, id uuid.UUID) error
}

var _ InstanceRepo = (*mockInstanceRepo)(nil)

func (m *mockInstanceRepo) AllByLocationID(ctx context.Context, locationID uuid.UUID) ([]model.BookInstance, error) {
	if m.allByLocationIDFn == nil {
		return nil, nil
	}
	return m.allByLocationIDFn(ctx, locationID)
}

func (m *mockInstanceRepo) Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, tx, id)
}

type mockReservationRepo struct {
	deleteAllByInstanceIDFn func(ctx context.Context, tx *sql.Tx, instanceID uuid.UUID) error
}

var _ ReservationRepo = (*mockReservationRepo)(nil)

func (m *mockReservationRepo) DeleteAllByInstanceID(ctx context.Context, tx *sql.Tx, instanceID uuid.UUID) error {
	if m.deleteAllByInstanceIDFn == nil {
		return nil
	}
	return m.deleteAllByInstanceIDFn(ctx, tx, instanceID)
}

type mockReportRepo struct {
	deleteAllByInstanceIDFn func(ctx context.Context, tx *sql.Tx, instanceID uuid.UUID) error
}

var _ ReportRepo = (*mockReportRepo)(nil)

func (m *mockReportRepo) DeleteAllByInstanceID(ctx context.Context, tx *sql.Tx, instanceID uuid.UUID) error {
	if m.deleteAllByInstanceIDFn == nil {
		return nil
	}
	return m.deleteAllByInstanceIDFn(ctx, tx, instanceID)
}

type mockTransactionRepo struct {
	deleteAllByInstanceIDsFn func(ctx context.Context, tx *sql.Tx, instanceIDs []uuid.UUID) error
}

var _ TransactionRepo = (*mockTransactionRepo)(nil)

func (m *mockTransactionRepo) DeleteAllByInstanceIDs(ctx context.Context, tx *sql.Tx, instanceIDs []uuid.UUID) error {
	if m.deleteAllByInstanceIDsFn == nil {
		return nil
	}
	return m.deleteAllByInstanceIDsFn(ctx, tx, instanceIDs)
}

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestDelete_CascadesInstances(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	admin := model.User{ID: uuid.New(), Role: model.RoleAdmin}
	locID := uuid.New()
	instA, instB := uuid.New(), uuid.New()

	r := &mockRepo{
		byIDFn: func(ctx context.Context, id uuid.UUID) (*model.Location, error) {
			return &model.Location{ID: locID, Name: "shelf"}, nil
		},
	}
	ir := &mockInstanceRepo{
		allByLocationIDFn: func(ctx context.Context, id uuid.UUID) ([]model.BookInstance, error) {
			return []model.BookInstance{
				{ID: instA, LocationID: locID},
				{ID: instB, LocationID: locID},
			}, nil
		},
	}

	var txnWipe []uuid.UUID
	var reportsWiped, reservationsWiped, instancesDeleted []uuid.UUID
	locationDeleted := false

	tr := &mockTransactionRepo{
		deleteAllByInstanceIDsFn: func(ctx context.Context, tx *sql.Tx, ids []uuid.UUID) error {
			txnWipe = ids
			return nil
		},
	}
	rpr := &mockReportRepo{
		deleteAllByInstanceIDFn: func(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
			reportsWiped = append(reportsWiped, id)
			return nil
		},
	}
	rr := &mockReservationRepo{
		deleteAllByInstanceIDFn: func(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
			reservationsWiped = append(reservationsWiped, id)
			return nil
		},
	}
	ir.deleteFn = func(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
		instancesDeleted = append(instancesDeleted, id)
		return nil
	}
	r.deleteFn = func(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
		require.Len(t, instancesDeleted, 2, "instances go before the location")
		locationDeleted = true
		return nil
	}

	s := New(db, r, ir, rr, rpr, tr)
	require.NoError(t, s.Delete(context.Background(), admin, locID))

	require.ElementsMatch(t, []uuid.UUID{instA, instB}, txnWipe)
	require.ElementsMatch(t, []uuid.UUID{instA, instB}, reportsWiped)
	require.ElementsMatch(t, []uuid.UUID{instA, instB}, reservationsWiped)
	require.ElementsMatch(t, []uuid.UUID{instA, instB}, instancesDeleted)
	require.True(t, locationDeleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_AdminOnly(t *testing.T) {
	s := New(nil, &mockRepo{}, &mockInstanceRepo{}, &mockReservationRepo{}, &mockReportRepo{}, &mockTransactionRepo{})
	err := s.Delete(context.Background(), model.User{ID: uuid.New(), Role: model.RoleUser}, uuid.New())
	require.Equal(t, ErrForbidden, Code(err))
}

func TestDelete_NotFound(t *testing.T) {
	admin := model.User{ID: uuid.New(), Role: model.RoleAdmin}
	s := New(nil, &mockRepo{}, &mockInstanceRepo{}, &mockReservationRepo{}, &mockReportRepo{}, &mockTransactionRepo{})
	err := s.Delete(context.Background(), admin, uuid.New())
	require.Equal(t, ErrNotFound, Code(err))
}
