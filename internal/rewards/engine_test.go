package rewards

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/cafeloyalty/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)

func newTestEngine(store AccountStore) *Engine {
	return NewEngine(store, WithClock(func() time.Time { return fixedNow }))
}

func clientSession(a domain.Account) domain.Session {
	return domain.Session{AccountID: a.ID, Role: domain.RoleClient}
}

func testOffer(cost int64) domain.Offer {
	return domain.Offer{
		ID:          uuid.New(),
		ShopID:      uuid.New(),
		Name:        "Free flat white",
		Description: "Any size",
		PointsCost:  cost,
	}
}

func TestRedeemExactBalance(t *testing.T) {
	store := newMemStore()
	account := store.add(50, domain.RoleClient)
	offer := testOffer(50)

	out, err := newTestEngine(store).Redeem(context.Background(), clientSession(account), account.ID, offer)
	require.NoError(t, err)
	assert.True(t, out.Redeemed)
	assert.Equal(t, int64(0), out.Points)

	got := store.snapshot(account.ID)
	assert.Equal(t, int64(0), got.Points)
	require.Len(t, got.RedemptionHistory, 1)
	entry := got.RedemptionHistory[0]
	assert.Equal(t, offer.ID, entry.OfferID)
	assert.Equal(t, offer.ShopID, entry.ShopID)
	assert.Equal(t, offer.Name, entry.Name)
	assert.Equal(t, offer.Description, entry.Description)
	assert.Equal(t, fixedNow, entry.RedeemedAt)
}

func TestRedeemInsufficientPoints(t *testing.T) {
	store := newMemStore()
	account := store.add(30, domain.RoleClient)
	offer := testOffer(50)

	out, err := newTestEngine(store).Redeem(context.Background(), clientSession(account), account.ID, offer)
	require.NoError(t, err)
	assert.False(t, out.Redeemed)
	assert.Equal(t, InsufficientPoints(20), out.Rejection)
	assert.Equal(t, int64(30), out.Points)

	got := store.snapshot(account.ID)
	assert.Equal(t, int64(30), got.Points)
	assert.Empty(t, got.RedemptionHistory)
}

func TestRedeemTwiceDebitsOnce(t *testing.T) {
	store := newMemStore()
	account := store.add(120, domain.RoleClient)
	offer := testOffer(50)
	engine := newTestEngine(store)
	ctx := context.Background()

	first, err := engine.Redeem(ctx, clientSession(account), account.ID, offer)
	require.NoError(t, err)
	assert.True(t, first.Redeemed)

	second, err := engine.Redeem(ctx, clientSession(account), account.ID, offer)
	require.NoError(t, err)
	assert.False(t, second.Redeemed)
	assert.Equal(t, AlreadyRedeemed, second.Rejection)

	got := store.snapshot(account.ID)
	assert.Equal(t, int64(70), got.Points)
	assert.Len(t, got.RedemptionHistory, 1)
}

func TestRedeemIgnoresStaleDisplayState(t *testing.T) {
	store := newMemStore()
	account := store.add(10, domain.RoleClient)
	offer := testOffer(50)

	// The caller still holds a copy that claims 100 points.
	stale := account
	stale.Points = 100

	out, err := newTestEngine(store).Redeem(context.Background(), clientSession(stale), stale.ID, offer)
	require.NoError(t, err)
	assert.False(t, out.Redeemed)
	assert.Equal(t, InsufficientPoints(40), out.Rejection)
}

func TestRedeemSimultaneousCallsSucceedOnce(t *testing.T) {
	store := newMemStore()
	account := store.add(100, domain.RoleClient)
	offer := testOffer(50)
	engine := newTestEngine(store)

	// Both callers read the same state before either commits.
	var reads atomic.Int32
	var barrier sync.WaitGroup
	barrier.Add(2)
	store.afterRead = func() {
		if reads.Add(1) <= 2 {
			barrier.Done()
			barrier.Wait()
		}
	}

	outcomes := make([]RedemptionOutcome, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i], errs[i] = engine.Redeem(context.Background(), clientSession(account), account.ID, offer)
		}()
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.NotEqual(t, outcomes[0].Redeemed, outcomes[1].Redeemed, "exactly one call must succeed")
	for _, out := range outcomes {
		if !out.Redeemed {
			assert.Equal(t, AlreadyRedeemed, out.Rejection)
		}
	}

	got := store.snapshot(account.ID)
	assert.Equal(t, int64(50), got.Points)
	assert.Len(t, got.RedemptionHistory, 1)
}

func TestRedeemManyConcurrentCallers(t *testing.T) {
	store := newMemStore()
	account := store.add(1000, domain.RoleClient)
	offer := testOffer(50)
	engine := newTestEngine(store)

	const callers = 32
	var redeemed, rejected atomic.Int32
	var wg sync.WaitGroup
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := engine.Redeem(context.Background(), clientSession(account), account.ID, offer)
			if !assert.NoError(t, err) {
				return
			}
			if out.Redeemed {
				redeemed.Add(1)
			} else {
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), redeemed.Load())
	assert.Equal(t, int32(callers-1), rejected.Load())
	assert.Equal(t, int64(950), store.snapshot(account.ID).Points)
}

func TestAwardDuringRedeemIsNotLost(t *testing.T) {
	store := newMemStore()
	account := store.add(50, domain.RoleClient)
	admin := store.add(0, domain.RoleAdmin)
	offer := testOffer(50)
	engine := newTestEngine(store)
	ctx := context.Background()

	// The award lands between the redeem's read and its commit.
	var once sync.Once
	store.afterRead = func() {
		once.Do(func() {
			_, err := engine.AwardPoints(ctx, domain.NewSession(&admin), account.ID, 100, "visit")
			require.NoError(t, err)
		})
	}

	out, err := engine.Redeem(ctx, clientSession(account), account.ID, offer)
	require.NoError(t, err)
	assert.True(t, out.Redeemed)
	assert.Equal(t, int64(100), out.Points)

	got := store.snapshot(account.ID)
	assert.Equal(t, int64(100), got.Points)
	assert.Len(t, got.RedemptionHistory, 1)
}

func TestAwardAndRedeemAnyOrder(t *testing.T) {
	for i := range 50 {
		store := newMemStore()
		account := store.add(50, domain.RoleClient)
		admin := store.add(0, domain.RoleAdmin)
		offer := testOffer(50)
		engine := newTestEngine(store)
		ctx := context.Background()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := engine.AwardPoints(ctx, domain.NewSession(&admin), account.ID, 100, "visit")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			out, err := engine.Redeem(ctx, clientSession(account), account.ID, offer)
			if assert.NoError(t, err) {
				assert.True(t, out.Redeemed, "run %d", i)
			}
		}()
		wg.Wait()

		got := store.snapshot(account.ID)
		assert.Equal(t, int64(100), got.Points, "run %d", i)
		assert.Len(t, got.RedemptionHistory, 1, "run %d", i)
	}
}

// conflictStore always reports a concurrent writer.
type conflictStore struct {
	*memStore
	commits atomic.Int32
}

func (s *conflictStore) CommitAccountUpdate(context.Context, domain.AccountUpdate) error {
	s.commits.Add(1)
	return domain.ErrConflict
}

func TestRedeemRetriesConflictOnce(t *testing.T) {
	store := &conflictStore{memStore: newMemStore()}
	account := store.add(100, domain.RoleClient)

	_, err := newTestEngine(store).Redeem(context.Background(), clientSession(account), account.ID, testOffer(50))
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, int32(2), store.commits.Load())
	assert.Equal(t, int64(100), store.snapshot(account.ID).Points)
}

func TestRedeemRequiresOwnerSession(t *testing.T) {
	store := newMemStore()
	account := store.add(100, domain.RoleClient)
	other := store.add(100, domain.RoleClient)
	engine := newTestEngine(store)
	ctx := context.Background()

	_, err := engine.Redeem(ctx, domain.Session{}, account.ID, testOffer(50))
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	_, err = engine.Redeem(ctx, clientSession(other), account.ID, testOffer(50))
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	assert.Equal(t, int64(100), store.snapshot(account.ID).Points)
}

func TestRedeemUnknownAccount(t *testing.T) {
	id := uuid.New()
	_, err := newTestEngine(newMemStore()).Redeem(context.Background(),
		domain.Session{AccountID: id, Role: domain.RoleClient}, id, testOffer(10))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedeemRejectsNonPositiveCost(t *testing.T) {
	store := newMemStore()
	account := store.add(100, domain.RoleClient)

	_, err := newTestEngine(store).Redeem(context.Background(), clientSession(account), account.ID, testOffer(0))
	assert.ErrorIs(t, err, domain.ErrInvalidOffer)
}

func TestAwardPoints(t *testing.T) {
	store := newMemStore()
	account := store.add(5, domain.RoleClient)
	admin := store.add(0, domain.RoleAdmin)
	engine := newTestEngine(store)
	ctx := context.Background()

	balance, err := engine.AwardPoints(ctx, domain.NewSession(&admin), account.ID, 10, "two coffees")
	require.NoError(t, err)
	assert.Equal(t, int64(15), balance)
	require.Len(t, store.txs, 1)
	assert.Equal(t, domain.TxTypeAward, store.txs[0].TxType)
	assert.Equal(t, "two coffees", store.txs[0].Description)
}

func TestAwardPointsValidation(t *testing.T) {
	store := newMemStore()
	account := store.add(5, domain.RoleClient)
	admin := store.add(0, domain.RoleAdmin)
	engine := newTestEngine(store)
	ctx := context.Background()

	tests := []struct {
		name  string
		sess  domain.Session
		delta int64
		want  error
	}{
		{"no session", domain.Session{}, 10, domain.ErrNotAuthenticated},
		{"client cannot award", clientSession(account), 10, domain.ErrForbidden},
		{"zero delta", domain.NewSession(&admin), 0, domain.ErrInvalidAmount},
		{"negative delta", domain.NewSession(&admin), -5, domain.ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.AwardPoints(ctx, tt.sess, account.ID, tt.delta, "")
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
	assert.Equal(t, int64(5), store.snapshot(account.ID).Points)
}

type recordingObserver struct {
	mu        sync.Mutex
	results   []string
	conflicts int
	awarded   int64
}

func (o *recordingObserver) RedemptionFinished(result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.results = append(o.results, result)
}

func (o *recordingObserver) CommitConflict() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.conflicts++
}

func (o *recordingObserver) PointsAwarded(delta int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.awarded += delta
}

func TestEngineReportsToObserver(t *testing.T) {
	store := newMemStore()
	account := store.add(50, domain.RoleClient)
	admin := store.add(0, domain.RoleAdmin)
	obs := &recordingObserver{}
	engine := NewEngine(store, WithObserver(obs))
	ctx := context.Background()
	offer := testOffer(50)

	_, err := engine.Redeem(ctx, clientSession(account), account.ID, offer)
	require.NoError(t, err)
	_, err = engine.Redeem(ctx, clientSession(account), account.ID, offer)
	require.NoError(t, err)
	_, err = engine.AwardPoints(ctx, domain.NewSession(&admin), account.ID, 7, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"redeemed", "already_redeemed"}, obs.results)
	assert.Equal(t, int64(7), obs.awarded)
	assert.Zero(t, obs.conflicts)
}
