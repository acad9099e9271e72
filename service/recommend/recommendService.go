package recommendsvc

import (
	"context"
	"sort"
	"time"

	"bookcrossing/model"
	"bookcrossing/util/cache"

	"github.com/google/uuid"
)

type BookRepo interface {
	AllByIDsAndStatus(ctx context.Context, ids []uuid.UUID, status model.BookStatus) ([]model.Book, error)
	FavoriteBookIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type InstanceRepo interface {
	AllByStatus(ctx context.Context, status model.InstanceStatus) ([]model.BookInstance, error)
	AllByIDsAndStatuses(ctx context.Context, ids []uuid.UUID, statuses []model.InstanceStatus) ([]model.BookInstance, error)
}

type TransactionRepo interface {
	AllByTypeAndUserID(ctx context.Context, typ model.TransactionType, userID uuid.UUID) ([]model.Transaction, error)
}

// ScoredBook carries a 0..100 relevance score next to the book itself.
type ScoredBook struct {
	Book  model.Book `json:"book"`
	Score int        `json:"score"`
}

type Service interface {
	ForUser(ctx context.Context, user model.User) ([]ScoredBook, error)
}

type service struct {
	br    BookRepo
	ir    InstanceRepo
	tr    TransactionRepo
	cache *cache.Cache
}

const cacheTTL = 15 * time.Second

func New(br BookRepo, ir InstanceRepo, tr TransactionRepo) Service {
	return &service{br: br, ir: ir, tr: tr, cache: cache.New(cacheTTL)}
}

// ForUser scores every available book against the user's borrowing history.
// Candidates are books with at least one PLACED copy, minus the user's
// favorites. Each borrowed book votes for its genre, author, cover and size;
// a candidate's raw score is the sum of votes its attributes collected,
// min-max normalized to 0..100. With no history everything scores zero.
func (s *service) ForUser(ctx context.Context, user model.User) ([]ScoredBook, error) {
	key := user.ID.String()
	if v, ok := s.cache.Get(key); ok {
		return v.([]ScoredBook), nil
	}

	candidates, err := s.candidates(ctx, user)
	if err != nil {
		return nil, err
	}
	history, err := s.history(ctx, user)
	if err != nil {
		return nil, err
	}

	genres := map[string]int{}
	authors := map[string]int{}
	covers := map[model.BookCover]int{}
	sizes := map[model.BookSize]int{}
	for _, b := range history {
		genres[b.Genre]++
		authors[b.Author]++
		covers[b.Cover]++
		sizes[b.Size]++
	}

	raw := make([]int, len(candidates))
	min, max := 0, 0
	for i, b := range candidates {
		r := genres[b.Genre] + authors[b.Author] + covers[b.Cover] + sizes[b.Size]
		raw[i] = r
		if i == 0 || r < min {
			min = r
		}
		if r > max {
			max = r
		}
	}

	scored := make([]ScoredBook, len(candidates))
	for i, b := range candidates {
		score := 0
		if max > min {
			score = int(float64(raw[i]-min) / float64(max-min) * 100)
		}
		scored[i] = ScoredBook{Book: b, Score: score}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	s.cache.Set(key, scored)
	return scored, nil
}

func (s *service) candidates(ctx context.Context, user model.User) ([]model.Book, error) {
	placed, err := s.ir.AllByStatus(ctx, model.InstancePlaced)
	if err != nil {
		return nil, err
	}
	bookIDs := distinctBookIDs(placed)
	if len(bookIDs) == 0 {
		return nil, nil
	}
	favIDs, err := s.br.FavoriteBookIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	fav := make(map[uuid.UUID]bool, len(favIDs))
	for _, id := range favIDs {
		fav[id] = true
	}
	keep := bookIDs[:0]
	for _, id := range bookIDs {
		if !fav[id] {
			keep = append(keep, id)
		}
	}
	if len(keep) == 0 {
		return nil, nil
	}
	return s.br.AllByIDsAndStatus(ctx, keep, model.BookActive)
}

func (s *service) history(ctx context.Context, user model.User) ([]model.Book, error) {
	borrows, err := s.tr.AllByTypeAndUserID(ctx, model.TransactionBorrow, user.ID)
	if err != nil {
		return nil, err
	}
	if len(borrows) == 0 {
		return nil, nil
	}
	instIDs := make([]uuid.UUID, 0, len(borrows))
	for _, t := range borrows {
		instIDs = append(instIDs, t.InstanceID)
	}
	insts, err := s.ir.AllByIDsAndStatuses(ctx, instIDs, []model.InstanceStatus{model.InstancePlaced})
	if err != nil {
		return nil, err
	}
	bookIDs := distinctBookIDs(insts)
	if len(bookIDs) == 0 {
		return nil, nil
	}
	return s.br.AllByIDsAndStatus(ctx, bookIDs, model.BookActive)
}

func distinctBookIDs(insts []model.BookInstance) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(insts))
	ids := make([]uuid.UUID, 0, len(insts))
	for _, inst := range insts {
		if !seen[inst.BookID] {
			seen[inst.BookID] = true
			ids = append(ids, inst.BookID)
		}
	}
	return ids
}
