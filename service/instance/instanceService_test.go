package instancesvc

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
	createFn               func(ctx context.Context, tx *sql.Tx, inst *model.BookInstance) error
	byIDFn                 func(ctx context.Context, id uuid.UUID) (*model.BookInstance, error)
	updateFn               func(ctx context.Context, inst *model.BookInstance) error
	updateStatusFn         func(ctx context.Context, tx *sql.Tx, id uuid.UUID, status model.InstanceStatus) error
	allByBookAndStatusesFn func(ctx context.Context, bookID uuid.UUID, statuses []model.InstanceStatus) ([]model.BookInstance, error)
	deleteFn               func(ctx context.Context, tx *sql.Tx, id uuid.UUID) error
}

var _ Repo = (*mockRepo)(nil)

func (m *mockRepo) Create(ctx context.Context, tx *sql.Tx, inst *model.BookInstance) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, tx, inst)
}

func (m *mockRepo) ByID(ctx context.Context, id uuid.UUID) (*model.BookInstance, error) {
	if m.byIDFn == nil {
		return nil, nil
	}
	return m.byIDFn(ctx, id)
}

func (m *mockRepo) Update(ctx context.Context, inst *model.BookInstance) error {
	if m.updateFn == nil {
		return nil
	}
	return m.updateFn(ctx, inst)
}

func (m *mockRepo) UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status model.InstanceStatus) error {
	if m.updateStatusFn == nil {
		return nil
	}
	return m.updateStatusFn(ctx, tx, id, status)
}

func (m *mockRepo) AllByBookAndStatuses(ctx context.Context, bookID uuid.UUID, statuses []model.InstanceStatus) ([]model.BookInstance, error) {
	if m.allByBookAndStatusesFn == nil {
		return nil, nil
	}
	return m.allByBookAndStatusesFn(ctx, bookID, statuses)
}

func (m *mockRepo) AllByStatus(ctx context.Context, status model.InstanceStatus) ([]model.BookInstance, error) {
	return nil, nil
}

func (m *mockRepo) Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, tx, id)
}

type mockBookRepo struct {
	byIDFn func(ctx context.Context, id uuid.UUID) (*model.Book, error)
}

var _ BookRepo = (*mockBookRepo)(nil)

func (m *mockBookRepo) ByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	if m.byIDFn == nil {
		return nil, nil
	}
	return m.byIDFn(ctx, id)
}

type mockAttachmentRepo struct{}

func (m *mockAttachmentRepo) ByID(ctx context.Context, id uuid.UUID) (*model.Attachment, error) {
	return &model.Attachment{ID: id, ContentType: "image/jpeg"}, nil
}

type mockLocationRepo struct{}

func (m *mockLocationRepo) ByID(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	return &model.Location{ID: id, Name: "shelf"}, nil
}

type mockTransactionRepo struct {
	createFn func(ctx context.Context, tx *sql.Tx, t *model.Transaction) error
}

var _ TransactionRepo = (*mockTransactionRepo)(nil)

func (m *mockTransactionRepo) Create(ctx context.Context, tx *sql.Tx, t *model.Transaction) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, tx, t)
}

func (m *mockTransactionRepo) DeleteAllByInstanceID(ctx context.Context, tx *sql.Tx, instanceID uuid.UUID) error {
	return nil
}

type mockReservationRepo struct{}

func (m *mockReservationRepo) DeleteAllByInstanceID(ctx context.Context, tx *sql.Tx, instanceID uuid.UUID) error {
	return nil
}

type mockReportRepo struct{}

func (m *mockReportRepo) DeleteAllByInstanceID(ctx context.Context, tx *sql.Tx, instanceID uuid.UUID) error {
	return nil
}

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func existingBook(id uuid.UUID) *mockBookRepo {
	return &mockBookRepo{
		byIDFn: func(ctx context.Context, got uuid.UUID) (*model.Book, error) {
			if got == id {
				return &model.Book{ID: id, Status: model.BookActive}, nil
			}
			return nil, nil
		},
	}
}

func TestByBookID_VisibilityByRole(t *testing.T) {
	bookID := uuid.New()
	var askedStatuses []model.InstanceStatus
	r := &mockRepo{
		allByBookAndStatusesFn: func(ctx context.Context, id uuid.UUID, statuses []model.InstanceStatus) ([]model.BookInstance, error) {
			askedStatuses = statuses
			return nil, nil
		},
	}
	s := New(nil, r, existingBook(bookID), &mockAttachmentRepo{}, &mockLocationRepo{}, &mockTransactionRepo{}, &mockReservationRepo{}, &mockReportRepo{})

	_, err := s.ByBookID(context.Background(), bookID, nil)
	require.NoError(t, err)
	require.Equal(t, []model.InstanceStatus{model.InstancePlaced}, askedStatuses)

	admin := model.User{ID: uuid.New(), Role: model.RoleAdmin}
	_, err = s.ByBookID(context.Background(), bookID, &admin)
	require.NoError(t, err)
	require.ElementsMatch(t, []model.InstanceStatus{
		model.InstancePlaced, model.InstanceReserved, model.InstanceReported,
	}, askedStatuses)
}

func TestCreate_UserLandsInModeration(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	bookID := uuid.New()
	var lends []model.Transaction
	r := &mockRepo{
		createFn: func(ctx context.Context, tx *sql.Tx, inst *model.BookInstance) error {
			inst.ID = uuid.New()
			return nil
		},
	}
	tr := &mockTransactionRepo{
		createFn: func(ctx context.Context, tx *sql.Tx, t *model.Transaction) error {
			lends = append(lends, *t)
			return nil
		},
	}
	s := New(db, r, existingBook(bookID), &mockAttachmentRepo{}, &mockLocationRepo{}, tr, &mockReservationRepo{}, &mockReportRepo{})

	user := model.User{ID: uuid.New(), Role: model.RoleUser}
	inst, err := s.Create(context.Background(), user, CreateInput{
		BookID: bookID, Condition: model.ConditionGood, PhotoID: uuid.New(), LocationID: uuid.New(),
	})
	require.NoError(t, err)
	require.Equal(t, model.InstanceModeration, inst.Status)
	require.Equal(t, user.ID, inst.OwnerID)
	// Nothing is lent out until moderation clears it.
	require.Empty(t, lends)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_AdminRecordsLend(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	bookID := uuid.New()
	var lends []model.Transaction
	r := &mockRepo{
		createFn: func(ctx context.Context, tx *sql.Tx, inst *model.BookInstance) error {
			inst.ID = uuid.New()
			return nil
		},
	}
	tr := &mockTransactionRepo{
		createFn: func(ctx context.Context, tx *sql.Tx, t *model.Transaction) error {
			lends = append(lends, *t)
			return nil
		},
	}
	s := New(db, r, existingBook(bookID), &mockAttachmentRepo{}, &mockLocationRepo{}, tr, &mockReservationRepo{}, &mockReportRepo{})

	admin := model.User{ID: uuid.New(), Role: model.RoleAdmin}
	inst, err := s.Create(context.Background(), admin, CreateInput{
		BookID: bookID, Condition: model.ConditionGood, PhotoID: uuid.New(), LocationID: uuid.New(),
	})
	require.NoError(t, err)
	require.Equal(t, model.InstancePlaced, inst.Status)
	require.Len(t, lends, 1)
	require.Equal(t, model.TransactionLend, lends[0].Type)
	require.Equal(t, admin.ID, lends[0].UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_BookNotFound(t *testing.T) {
	s := New(nil, &mockRepo{}, &mockBookRepo{}, &mockAttachmentRepo{}, &mockLocationRepo{}, &mockTransactionRepo{}, &mockReservationRepo{}, &mockReportRepo{})
	_, err := s.Create(context.Background(), model.User{ID: uuid.New()}, CreateInput{BookID: uuid.New()})
	require.Equal(t, ErrBookNotFound, Code(err))
}

func TestApprove_PlacesCopyAndRecordsLend(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	ownerID, instID := uuid.New(), uuid.New()
	var lends []model.Transaction
	var statusSet model.InstanceStatus
	r := &mockRepo{
		byIDFn: func(ctx context.Context, id uuid.UUID) (*model.BookInstance, error) {
			return &model.BookInstance{ID: instID, OwnerID: ownerID, Status: model.InstanceModeration}, nil
		},
		updateStatusFn: func(ctx context.Context, tx *sql.Tx, id uuid.UUID, status model.InstanceStatus) error {
			statusSet = status
			return nil
		},
	}
	tr := &mockTransactionRepo{
		createFn: func(ctx context.Context, tx *sql.Tx, t *model.Transaction) error {
			lends = append(lends, *t)
			return nil
		},
	}
	s := New(db, r, &mockBookRepo{}, &mockAttachmentRepo{}, &mockLocationRepo{}, tr, &mockReservationRepo{}, &mockReportRepo{})

	admin := model.User{ID: uuid.New(), Role: model.RoleAdmin}
	inst, err := s.Approve(context.Background(), admin, instID)
	require.NoError(t, err)
	require.Equal(t, model.InstancePlaced, inst.Status)
	require.Equal(t, model.InstancePlaced, statusSet)
	require.Len(t, lends, 1)
	// Credit goes to the owner who listed the copy, not the moderator.
	require.Equal(t, ownerID, lends[0].UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApprove_NotInModeration(t *testing.T) {
	r := &mockRepo{
		byIDFn: func(ctx context.Context, id uuid.UUID) (*model.BookInstance, error) {
			return &model.BookInstance{ID: id, Status: model.InstancePlaced}, nil
		},
	}
	s := New(nil, r, &mockBookRepo{}, &mockAttachmentRepo{}, &mockLocationRepo{}, &mockTransactionRepo{}, &mockReservationRepo{}, &mockReportRepo{})
	admin := model.User{ID: uuid.New(), Role: model.RoleAdmin}
	_, err := s.Approve(context.Background(), admin, uuid.New())
	require.Equal(t, ErrModerationNotNeeded, Code(err))
}

func TestDelete_OwnerOrAdminOnly(t *testing.T) {
	ownerID, instID := uuid.New(), uuid.New()
	r := &mockRepo{
		byIDFn: func(ctx context.Context, id uuid.UUID) (*model.BookInstance, error) {
			return &model.BookInstance{ID: instID, OwnerID: ownerID, Status: model.InstancePlaced}, nil
		},
	}
	s := New(nil, r, &mockBookRepo{}, &mockAttachmentRepo{}, &mockLocationRepo{}, &mockTransactionRepo{}, &mockReservationRepo{}, &mockReportRepo{})

	stranger := model.User{ID: uuid.New(), Role: model.RoleUser}
	err := s.Delete(context.Background(), stranger, instID)
	require.Equal(t, ErrAccessDenied, Code(err))
}

func TestDelete_CascadesInOneTransaction(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	ownerID, instID := uuid.New(), uuid.New()
	deleted := false
	r := &mockRepo{
		byIDFn: func(ctx context.Context, id uuid.UUID) (*model.BookInstance, error) {
			return &model.BookInstance{ID: instID, OwnerID: ownerID, Status: model.InstancePlaced}, nil
		},
		deleteFn: func(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
			deleted = true
			return nil
		},
	}
	s := New(db, r, &mockBookRepo{}, &mockAttachmentRepo{}, &mockLocationRepo{}, &mockTransactionRepo{}, &mockReservationRepo{}, &mockReportRepo{})

	owner := model.User{ID: ownerID, Role: model.RoleUser}
	require.NoError(t, s.Delete(context.Background(), owner, instID))
	require.True(t, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}
