package rewards

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/cafeloyalty/internal/config"
	"github.com/set-night/cafeloyalty/internal/domain"
)

// AccountStore is the source of truth for balances and redemption history.
type AccountStore interface {
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	// CommitAccountUpdate applies the balance and history change in one
	// atomic write, or returns domain.ErrConflict if the stored account no
	// longer matches the expectations in u.
	CommitAccountUpdate(ctx context.Context, u domain.AccountUpdate) error
	// IncrementPoints adds delta to the latest stored balance.
	IncrementPoints(ctx context.Context, id uuid.UUID, delta int64, description string) (int64, error)
}

// Observer receives engine events, typically for metrics.
type Observer interface {
	RedemptionFinished(result string)
	CommitConflict()
	PointsAwarded(delta int64)
}

type nopObserver struct{}

func (nopObserver) RedemptionFinished(string) {}
func (nopObserver) CommitConflict()           {}
func (nopObserver) PointsAwarded(int64)       {}

type RedemptionOutcome struct {
	Redeemed bool
	// Rejection is set when Redeemed is false.
	Rejection  EligibilityResult
	Redemption domain.Redemption
	// Points is the balance after the call.
	Points int64
}

type Engine struct {
	store       AccountStore
	observer    Observer
	now         func() time.Time
	maxAttempts int
}

type Option func(*Engine)

func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(store AccountStore, opts ...Option) *Engine {
	e := &Engine{
		store:       store,
		observer:    nopObserver{},
		now:         time.Now,
		maxAttempts: config.RedeemMaxAttempts,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Redeem exchanges points for offer on behalf of accountID.
//
// Refusals (already redeemed, insufficient points) are returned as a
// RedemptionOutcome with Redeemed=false, not as errors. Errors are reserved
// for authentication, missing accounts, backend failures and conflicts that
// survive the single retry.
func (e *Engine) Redeem(ctx context.Context, sess domain.Session, accountID uuid.UUID, offer domain.Offer) (RedemptionOutcome, error) {
	if !sess.Valid() || sess.AccountID != accountID {
		return RedemptionOutcome{}, domain.ErrNotAuthenticated
	}
	if offer.PointsCost <= 0 {
		return RedemptionOutcome{}, domain.ErrInvalidOffer
	}

	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		account, err := e.store.GetAccount(ctx, accountID)
		if err != nil {
			return RedemptionOutcome{}, fmt.Errorf("load account: %w", err)
		}

		result := EvaluateEligibility(account, &offer)
		if !result.Eligible() {
			e.observer.RedemptionFinished(result.Status.String())
			return RedemptionOutcome{Rejection: result, Points: account.Points}, nil
		}

		entry := domain.Redemption{
			OfferID:     offer.ID,
			Name:        offer.Name,
			Description: offer.Description,
			ShopID:      offer.ShopID,
			PointsCost:  offer.PointsCost,
			RedeemedAt:  e.now().UTC(),
		}
		update := domain.AccountUpdate{
			ID:             accountID,
			ExpectedPoints: account.Points,
			NewPoints:      account.Points - offer.PointsCost,
			Entry:          entry,
		}

		err = e.store.CommitAccountUpdate(ctx, update)
		if err == nil {
			e.observer.RedemptionFinished("redeemed")
			return RedemptionOutcome{Redeemed: true, Redemption: entry, Points: update.NewPoints}, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return RedemptionOutcome{}, fmt.Errorf("commit redemption: %w", err)
		}

		e.observer.CommitConflict()
		slog.Debug("redemption commit conflict",
			"account_id", accountID,
			"offer_id", offer.ID,
			"attempt", attempt,
		)
		lastErr = err
	}

	e.observer.RedemptionFinished("conflict")
	return RedemptionOutcome{}, fmt.Errorf("commit redemption: %w", lastErr)
}

// AwardPoints credits delta points to accountID. Only admins may award.
func (e *Engine) AwardPoints(ctx context.Context, sess domain.Session, accountID uuid.UUID, delta int64, description string) (int64, error) {
	if !sess.Valid() {
		return 0, domain.ErrNotAuthenticated
	}
	if !sess.IsAdmin() {
		return 0, domain.ErrForbidden
	}
	if delta <= 0 {
		return 0, domain.ErrInvalidAmount
	}

	balance, err := e.store.IncrementPoints(ctx, accountID, delta, description)
	if err != nil {
		return 0, fmt.Errorf("increment points: %w", err)
	}
	e.observer.PointsAwarded(delta)
	return balance, nil
}
