package rewards

import (
	"context"
	"iter"
	"sync"

	"github.com/google/uuid"
	"github.com/set-night/cafeloyalty/internal/domain"
)

// memStore is an in-memory AccountStore with the same conditional commit
// semantics as the Postgres store.
type memStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]domain.Account
	txs      []domain.Transaction

	// afterRead runs after each GetAccount, outside the lock.
	afterRead func()
}

func newMemStore() *memStore {
	return &memStore{accounts: make(map[uuid.UUID]domain.Account)}
}

func (s *memStore) add(points int64, role domain.Role) domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := domain.Account{ID: uuid.New(), Role: role, Points: points}
	s.accounts[a.ID] = a
	return a
}

func (s *memStore) snapshot(id uuid.UUID) domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accounts[id]
	a.RedemptionHistory = append([]domain.Redemption(nil), a.RedemptionHistory...)
	return a
}

func (s *memStore) GetAccount(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	s.mu.Lock()
	a, ok := s.accounts[id]
	if ok {
		a.RedemptionHistory = append([]domain.Redemption(nil), a.RedemptionHistory...)
	}
	hook := s.afterRead
	s.mu.Unlock()

	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	if hook != nil {
		hook()
	}
	return &a, nil
}

func (s *memStore) CommitAccountUpdate(_ context.Context, u domain.AccountUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[u.ID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if a.Points != u.ExpectedPoints || a.HasRedeemed(u.Entry.OfferID) || u.NewPoints < 0 {
		return domain.ErrConflict
	}
	a.Points = u.NewPoints
	a.RedemptionHistory = append(a.RedemptionHistory, u.Entry)
	s.accounts[u.ID] = a
	s.txs = append(s.txs, domain.Transaction{
		AccountID: u.ID,
		Amount:    u.NewPoints - u.ExpectedPoints,
		TxType:    domain.TxTypeRedeem,
	})
	return nil
}

func (s *memStore) IncrementPoints(_ context.Context, id uuid.UUID, delta int64, description string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return 0, domain.ErrAccountNotFound
	}
	a.Points += delta
	s.accounts[id] = a
	s.txs = append(s.txs, domain.Transaction{
		AccountID:   id,
		Amount:      delta,
		TxType:      domain.TxTypeAward,
		Description: description,
	})
	return a.Points, nil
}

type sliceFeed struct {
	// malformed is yielded before the changes without ending the feed.
	malformed error
	changes   []domain.AccountChange
	err       error
}

func (f sliceFeed) Changes(context.Context) iter.Seq2[domain.AccountChange, error] {
	return func(yield func(domain.AccountChange, error) bool) {
		if f.malformed != nil && !yield(domain.AccountChange{}, f.malformed) {
			return
		}
		for _, c := range f.changes {
			if !yield(c, nil) {
				return
			}
		}
		if f.err != nil {
			yield(domain.AccountChange{}, f.err)
		}
	}
}
