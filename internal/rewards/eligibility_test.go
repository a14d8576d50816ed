package rewards

import (
	"testing"

	"github.com/google/uuid"
	"github.com/set-night/cafeloyalty/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestEvaluateEligibility(t *testing.T) {
	offer := domain.Offer{ID: uuid.New(), PointsCost: 50}
	redeemed := []domain.Redemption{{OfferID: offer.ID}}
	other := []domain.Redemption{{OfferID: uuid.New()}}

	tests := []struct {
		name    string
		points  int64
		history []domain.Redemption
		want    EligibilityResult
	}{
		{"exact balance is enough", 50, nil, Eligible},
		{"more than enough", 51, nil, Eligible},
		{"short by twenty", 30, nil, InsufficientPoints(20)},
		{"zero balance", 0, nil, InsufficientPoints(50)},
		{"other offer redeemed", 50, other, Eligible},
		{"already redeemed with points", 500, redeemed, AlreadyRedeemed},
		{"already redeemed without points", 0, redeemed, AlreadyRedeemed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := &domain.Account{Points: tt.points, RedemptionHistory: tt.history}
			assert.Equal(t, tt.want, EvaluateEligibility(account, &offer))
		})
	}
}

func TestEvaluateEligibilityIsPure(t *testing.T) {
	offer := domain.Offer{ID: uuid.New(), PointsCost: 50}
	account := &domain.Account{Points: 30, RedemptionHistory: []domain.Redemption{{OfferID: uuid.New()}}}
	before := *account

	first := EvaluateEligibility(account, &offer)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, EvaluateEligibility(account, &offer))
	}
	assert.Equal(t, before.Points, account.Points)
	assert.Len(t, account.RedemptionHistory, 1)
}

func TestEligibilityResultString(t *testing.T) {
	assert.Equal(t, "eligible", Eligible.String())
	assert.Equal(t, "already_redeemed", AlreadyRedeemed.String())
	assert.Equal(t, "insufficient_points(20)", InsufficientPoints(20).String())
}
