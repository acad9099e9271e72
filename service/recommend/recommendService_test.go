package recommendsvc

import (
	"context"
	"testing"
	"time"

	"bookcrossing/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type mockBookRepo struct {
	allByIDsAndStatusFn func(ctx context.Context, ids []uuid.UUID, status model.BookStatus) ([]model.Book, error)
	favoriteBookIDsFn   func(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

var _ BookRepo = (*mockBookRepo)(nil)

func (m *mockBookRepo) AllByIDsAndStatus(ctx context.Context, ids []uuid.UUID, status model.BookStatus) ([]model.Book, error) {
	if m.allByIDsAndStatusFn == nil {
		return nil, nil
	}
	return m.allByIDsAndStatusFn(ctx, ids, status)
}

func (m *mockBookRepo) FavoriteBookIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if m.favoriteBookIDsFn == nil {
		return nil, nil
	}
	return m.favoriteBookIDsFn(ctx, userID)
}

type mockInstanceRepo struct {
	allByStatusFn         func(ctx context.Context, status model.InstanceStatus) ([]model.BookInstance, error)
	allByIDsAndStatusesFn func(ctx context.Context, ids []uuid.UUID, statuses []model.InstanceStatus) ([]model.BookInstance, error)
}

var _ InstanceRepo = (*mockInstanceRepo)(nil)

func (m *mockInstanceRepo) AllByStatus(ctx context.Context, status model.InstanceStatus) ([]model.BookInstance, error) {
	if m.allByStatusFn == nil {
		return nil, nil
	}
	return m.allByStatusFn(ctx, status)
}

func (m *mockInstanceRepo) AllByIDsAndStatuses(ctx context.Context, ids []uuid.UUID, statuses []model.InstanceStatus) ([]model.BookInstance, error) {
	if m.allByIDsAndStatusesFn == nil {
		return nil, nil
	}
	return m.allByIDsAndStatusesFn(ctx, ids, statuses)
}

type mockTransactionRepo struct {
	allByTypeAndUserIDFn func(ctx context.Context, typ model.TransactionType, userID uuid.UUID) ([]model.Transaction, error)
	allByTypeSinceFn     func(ctx context.Context, typ model.TransactionType, since time.Time) ([]model.Transaction, error)
}

var _ TransactionRepo = (*mockTransactionRepo)(nil)
var _ TrendTransactionRepo = (*mockTransactionRepo)(nil)

func (m *mockTransactionRepo) AllByTypeAndUserID(ctx context.Context, typ model.TransactionType, userID uuid.UUID) ([]model.Transaction, error) {
	if m.allByTypeAndUserIDFn == nil {
		return nil, nil
	}
	return m.allByTypeAndUserIDFn(ctx, typ, userID)
}

func (m *mockTransactionRepo) AllByTypeSince(ctx context.Context, typ model.TransactionType, since time.Time) ([]model.Transaction, error) {
	if m.allByTypeSinceFn == nil {
		return nil, nil
	}
	return m.allByTypeSinceFn(ctx, typ, since)
}

func book(genre, author string, cover model.BookCover, size model.BookSize) model.Book {
	return model.Book{
		ID:     uuid.New(),
		Genre:  genre,
		Author: author,
		Cover:  cover,
		Size:   size,
		Status: model.BookActive,
	}
}

// stockOf wires an instance repo and book repo so that the given books all
// have one PLACED copy each.
func stockOf(books []model.Book) (*mockInstanceRepo, *mockBookRepo, map[uuid.UUID]uuid.UUID) {
	instToBook := map[uuid.UUID]uuid.UUID{}
	var insts []model.BookInstance
	for _, b := range books {
		inst := model.BookInstance{ID: uuid.New(), BookID: b.ID, Status: model.InstancePlaced}
		insts = append(insts, inst)
		instToBook[inst.ID] = b.ID
	}
	byID := map[uuid.UUID]model.Book{}
	for _, b := range books {
		byID[b.ID] = b
	}
	ir := &mockInstanceRepo{
		allByStatusFn: func(ctx context.Context, status model.InstanceStatus) ([]model.BookInstance, error) {
			return insts, nil
		},
		allByIDsAndStatusesFn: func(ctx context.Context, ids []uuid.UUID, statuses []model.InstanceStatus) ([]model.BookInstance, error) {
			var out []model.BookInstance
			for _, inst := range insts {
				for _, id := range ids {
					if inst.ID == id {
						out = append(out, inst)
					}
				}
			}
			return out, nil
		},
	}
	br := &mockBookRepo{
		allByIDsAndStatusFn: func(ctx context.Context, ids []uuid.UUID, status model.BookStatus) ([]model.Book, error) {
			var out []model.Book
			for _, id := range ids {
				if b, ok := byID[id]; ok {
					out = append(out, b)
				}
			}
			return out, nil
		},
	}
	return ir, br, instToBook
}

func TestForUser_NoHistoryScoresZero(t *testing.T) {
	books := []model.Book{
		book("scifi", "Lem", model.CoverHard, model.SizeMedium),
		book("fantasy", "Le Guin", model.CoverSoft, model.SizeSmall),
	}
	ir, br, _ := stockOf(books)
	s := New(br, ir, &mockTransactionRepo{})

	scored, err := s.ForUser(context.Background(), model.User{ID: uuid.New()})
	require.NoError(t, err)
	require.Len(t, scored, 2)
	for _, sb := range scored {
		require.Equal(t, 0, sb.Score)
	}
}

func TestForUser_HistoryDrivesOrdering(t *testing.T) {
	scifiLem := book("scifi", "Lem", model.CoverHard, model.SizeMedium)
	scifiOther := book("scifi", "Asimov", model.CoverSoft, model.SizeLarge)
	romance := book("romance", "Austen", model.CoverSoft, model.SizeSmall)
	borrowed := book("scifi", "Lem", model.CoverHard, model.SizeMedium)

	ir, br, instToBook := stockOf([]model.Book{scifiLem, scifiOther, romance, borrowed})

	var borrowedInst uuid.UUID
	for instID, bookID := range instToBook {
		if bookID == borrowed.ID {
			borrowedInst = instID
		}
	}
	user := model.User{ID: uuid.New()}
	tr := &mockTransactionRepo{
		allByTypeAndUserIDFn: func(ctx context.Context, typ model.TransactionType, userID uuid.UUID) ([]model.Transaction, error) {
			require.Equal(t, model.TransactionBorrow, typ)
			return []model.Transaction{{InstanceID: borrowedInst, UserID: userID, Type: typ}}, nil
		},
	}

	s := New(br, ir, tr)
	scored, err := s.ForUser(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, scored, 4)

	// Full attribute match tops out at 100, a lone genre match lands in
	// between, no overlap at all bottoms out at 0.
	byBook := map[uuid.UUID]int{}
	for _, sb := range scored {
		byBook[sb.Book.ID] = sb.Score
	}
	require.Equal(t, 100, byBook[scifiLem.ID])
	require.Equal(t, 100, byBook[borrowed.ID])
	require.Equal(t, 0, byBook[romance.ID])
	require.Greater(t, byBook[scifiLem.ID], byBook[scifiOther.ID])
	require.Greater(t, byBook[scifiOther.ID], byBook[romance.ID])

	// Sorted best first.
	for i := 1; i < len(scored); i++ {
		require.GreaterOrEqual(t, scored[i-1].Score, scored[i].Score)
	}
}

func TestForUser_FavoritesExcluded(t *testing.T) {
	fav := book("scifi", "Lem", model.CoverHard, model.SizeMedium)
	other := book("fantasy", "Le Guin", model.CoverSoft, model.SizeSmall)
	ir, br, _ := stockOf([]model.Book{fav, other})
	br.favoriteBookIDsFn = func(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
		return []uuid.UUID{fav.ID}, nil
	}

	s := New(br, ir, &mockTransactionRepo{})
	scored, err := s.ForUser(context.Background(), model.User{ID: uuid.New()})
	require.NoError(t, err)
	require.Len(t, scored, 1)
	require.Equal(t, other.ID, scored[0].Book.ID)
}

func TestTrends_CountsAndOrders(t *testing.T) {
	hot := book("scifi", "Lem", model.CoverHard, model.SizeMedium)
	mild := book("fantasy", "Le Guin", model.CoverSoft, model.SizeSmall)
	ir, br, instToBook := stockOf([]model.Book{hot, mild})

	var hotInst, mildInst uuid.UUID
	for instID, bookID := range instToBook {
		switch bookID {
		case hot.ID:
			hotInst = instID
		case mild.ID:
			mildInst = instID
		}
	}
	ghostInst := uuid.New() // instance deleted since the borrow

	tr := &mockTransactionRepo{
		allByTypeSinceFn: func(ctx context.Context, typ model.TransactionType, since time.Time) ([]model.Transaction, error) {
			return []model.Transaction{
				{InstanceID: hotInst, Type: typ},
				{InstanceID: hotInst, Type: typ},
				{InstanceID: mildInst, Type: typ},
				{InstanceID: ghostInst, Type: typ},
			}, nil
		},
	}

	s := NewTrends(br, ir, tr)
	trending, err := s.Trends(context.Background(), time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, trending, 2)
	require.Equal(t, hot.ID, trending[0].Book.ID)
	require.Equal(t, 2, trending[0].Count)
	require.Equal(t, mild.ID, trending[1].Book.ID)
	require.Equal(t, 1, trending[1].Count)
}

func TestTrends_EmptyWindow(t *testing.T) {
	ir, br, _ := stockOf(nil)
	s := NewTrends(br, ir, &mockTransactionRepo{})
	trending, err := s.Trends(context.Background(), time.Now())
	require.NoError(t, err)
	require.Empty(t, trending)
}
