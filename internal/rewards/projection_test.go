package rewards

import (
	"testing"

	"github.com/google/uuid"
	"github.com/set-night/cafeloyalty/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject(t *testing.T) {
	cheap := domain.Offer{ID: uuid.New(), Name: "Espresso", PointsCost: 20}
	dear := domain.Offer{ID: uuid.New(), Name: "Beans 250g", PointsCost: 90}
	done := domain.Offer{ID: uuid.New(), Name: "Croissant", PointsCost: 10}

	account := &domain.Account{
		Points:            30,
		RedemptionHistory: []domain.Redemption{{OfferID: done.ID}},
	}

	views := Project(account, []domain.Offer{cheap, dear, done})
	require.Len(t, views, 3)

	assert.Equal(t, 100, views[0].ProgressPercent)
	assert.Equal(t, "Offer unlocked!", views[0].StatusText)
	assert.True(t, views[0].Actionable)

	assert.Equal(t, 33, views[1].ProgressPercent)
	assert.Equal(t, "60 points needed to unlock", views[1].StatusText)
	assert.False(t, views[1].Actionable)

	assert.Equal(t, "Offer already redeemed", views[2].StatusText)
	assert.False(t, views[2].Actionable)
}

func TestProjectAgreesWithEngine(t *testing.T) {
	offer := domain.Offer{ID: uuid.New(), PointsCost: 50}
	for _, points := range []int64{0, 1, 49, 50, 51, 1000} {
		account := &domain.Account{Points: points}
		view := ProjectOffer(account, &offer)
		assert.Equal(t, EvaluateEligibility(account, &offer), view.Eligibility)
		assert.Equal(t, view.Eligibility.Eligible(), view.Actionable)
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		points, cost int64
		want         int
	}{
		{0, 50, 0},
		{-3, 50, 0},
		{1, 3, 33},
		{2, 3, 66},
		{49, 50, 98},
		{50, 50, 100},
		{500, 50, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, progress(tt.points, tt.cost), "%d/%d", tt.points, tt.cost)
	}
}

func TestNewlyUnlocked(t *testing.T) {
	a := domain.Offer{ID: uuid.New(), PointsCost: 20}
	b := domain.Offer{ID: uuid.New(), PointsCost: 60}
	c := domain.Offer{ID: uuid.New(), PointsCost: 200}
	redeemed := domain.Offer{ID: uuid.New(), PointsCost: 40}

	account := &domain.Account{
		Points:            100,
		RedemptionHistory: []domain.Redemption{{OfferID: redeemed.ID}},
	}

	got := NewlyUnlocked(account, []domain.Offer{a, b, c, redeemed}, 30)
	assert.Equal(t, []domain.Offer{b}, got)
	assert.Equal(t, int64(100), account.Points)
}
