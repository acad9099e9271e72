package recommendsvc

import (
	"context"
	"sort"
	"time"

	"bookcrossing/model"
	"bookcrossing/util/cache"

	"github.com/google/uuid"
)

type TrendTransactionRepo interface {
	AllByTypeSince(ctx context.Context, typ model.TransactionType, since time.Time) ([]model.Transaction, error)
}

// TrendingBook pairs a book with how many times it was borrowed in the window.
type TrendingBook struct {
	Book  model.Book `json:"book"`
	Count int        `json:"count"`
}

type TrendService interface {
	Trends(ctx context.Context, since time.Time) ([]TrendingBook, error)
}

type trendService struct {
	br    BookRepo
	ir    InstanceRepo
	tr    TrendTransactionRepo
	cache *cache.Cache
}

const maxTrending = 100

func NewTrends(br BookRepo, ir InstanceRepo, tr TrendTransactionRepo) TrendService {
	return &trendService{br: br, ir: ir, tr: tr, cache: cache.New(cacheTTL)}
}

var allInstanceStatuses = []model.InstanceStatus{
	model.InstancePlaced,
	model.InstanceReserved,
	model.InstanceReceived,
	model.InstanceModeration,
	model.InstanceReported,
}

// Trends counts BORROW events per book since the given moment, most borrowed
// first. Events whose instance or book no longer resolves to an ACTIVE book
// are dropped silently; the rest of the window still counts.
func (s *trendService) Trends(ctx context.Context, since time.Time) ([]TrendingBook, error) {
	key := since.UTC().Format(time.RFC3339)
	if v, ok := s.cache.Get(key); ok {
		return v.([]TrendingBook), nil
	}

	borrows, err := s.tr.AllByTypeSince(ctx, model.TransactionBorrow, since)
	if err != nil {
		return nil, err
	}
	if len(borrows) == 0 {
		s.cache.Set(key, []TrendingBook{})
		return []TrendingBook{}, nil
	}

	instIDs := make([]uuid.UUID, 0, len(borrows))
	for _, t := range borrows {
		instIDs = append(instIDs, t.InstanceID)
	}
	insts, err := s.ir.AllByIDsAndStatuses(ctx, instIDs, allInstanceStatuses)
	if err != nil {
		return nil, err
	}
	bookByInst := make(map[uuid.UUID]uuid.UUID, len(insts))
	for _, inst := range insts {
		bookByInst[inst.ID] = inst.BookID
	}

	counts := map[uuid.UUID]int{}
	for _, t := range borrows {
		if bookID, ok := bookByInst[t.InstanceID]; ok {
			counts[bookID]++
		}
	}
	if len(counts) == 0 {
		s.cache.Set(key, []TrendingBook{})
		return []TrendingBook{}, nil
	}

	bookIDs := make([]uuid.UUID, 0, len(counts))
	for id := range counts {
		bookIDs = append(bookIDs, id)
	}
	books, err := s.br.AllByIDsAndStatus(ctx, bookIDs, model.BookActive)
	if err != nil {
		return nil, err
	}

	trending := make([]TrendingBook, 0, len(books))
	for _, b := range books {
		trending = append(trending, TrendingBook{Book: b, Count: counts[b.ID]})
	}
	sort.SliceStable(trending, func(i, j int) bool { return trending[i].Count > trending[j].Count })
	if len(trending) > maxTrending {
		trending = trending[:maxTrending]
	}

	s.cache.Set(key, trending)
	return trending, nil
}
