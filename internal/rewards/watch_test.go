package rewards

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/set-night/cafeloyalty/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchYieldsSnapshots(t *testing.T) {
	store := newMemStore()
	account := store.add(80, domain.RoleClient)
	missing := uuid.New()

	feed := sliceFeed{changes: []domain.AccountChange{
		{AccountID: account.ID, OldPoints: 30, NewPoints: 80},
		{AccountID: missing, OldPoints: 0, NewPoints: 10},
		{AccountID: account.ID, OldPoints: 80, NewPoints: 80},
	}}

	var events []AccountEvent
	var errs []error
	for ev, err := range Watch(context.Background(), feed, store) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		events = append(events, ev)
	}

	require.Len(t, events, 2)
	assert.Equal(t, int64(80), events[0].Account.Points)
	assert.Equal(t, int64(50), events[0].Change.Delta())
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], domain.ErrAccountNotFound)
}

func TestWatchStopsOnFeedError(t *testing.T) {
	boom := errors.New("listen: connection reset")
	feed := sliceFeed{err: boom}

	var got []error
	for _, err := range Watch(context.Background(), feed, newMemStore()) {
		got = append(got, err)
	}
	require.Len(t, got, 1)
	assert.ErrorIs(t, got[0], boom)
}

func TestWatchSurvivesMalformedChange(t *testing.T) {
	store := newMemStore()
	account := store.add(40, domain.RoleClient)
	bad := errors.New("invalid account change payload")
	feed := sliceFeed{
		malformed: bad,
		changes:   []domain.AccountChange{{AccountID: account.ID, OldPoints: 20, NewPoints: 40}},
	}

	var events []AccountEvent
	var errs []error
	for ev, err := range Watch(context.Background(), feed, store) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		events = append(events, ev)
	}

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], bad)
	require.Len(t, events, 1)
	assert.Equal(t, account.ID, events[0].Account.ID)
}

func TestWatchRestartable(t *testing.T) {
	store := newMemStore()
	account := store.add(10, domain.RoleClient)
	feed := sliceFeed{changes: []domain.AccountChange{{AccountID: account.ID, NewPoints: 10}}}
	seq := Watch(context.Background(), feed, store)

	for range 2 {
		n := 0
		for _, err := range seq {
			require.NoError(t, err)
			n++
		}
		assert.Equal(t, 1, n)
	}
}

func TestWatchEarlyBreak(t *testing.T) {
	store := newMemStore()
	account := store.add(10, domain.RoleClient)
	feed := sliceFeed{changes: []domain.AccountChange{
		{AccountID: account.ID}, {AccountID: account.ID}, {AccountID: account.ID},
	}}

	n := 0
	for range Watch(context.Background(), feed, store) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}
