package rewards

import (
	"fmt"

	"github.com/set-night/cafeloyalty/internal/domain"
	"github.com/shopspring/decimal"
)

// OfferView is how an offer is shown to one account.
type OfferView struct {
	Offer           domain.Offer
	Eligibility     EligibilityResult
	ProgressPercent int
	StatusText      string
	Actionable      bool
}

var hundred = decimal.NewFromInt(100)

// Project derives the display state of each offer from EvaluateEligibility.
func Project(account *domain.Account, offers []domain.Offer) []OfferView {
	views := make([]OfferView, 0, len(offers))
	for i := range offers {
		views = append(views, ProjectOffer(account, &offers[i]))
	}
	return views
}

func ProjectOffer(account *domain.Account, offer *domain.Offer) OfferView {
	result := EvaluateEligibility(account, offer)
	view := OfferView{
		Offer:       *offer,
		Eligibility: result,
		Actionable:  result.Eligible(),
	}

	switch result.Status {
	case StatusAlreadyRedeemed:
		view.ProgressPercent = 100
		view.StatusText = "Offer already redeemed"
	case StatusInsufficientPoints:
		view.ProgressPercent = progress(account.Points, offer.PointsCost)
		view.StatusText = fmt.Sprintf("%d points needed to unlock", result.Shortfall)
	default:
		view.ProgressPercent = 100
		view.StatusText = "Offer unlocked!"
	}
	return view
}

// progress is floor(points/cost*100), clamped to [0, 100].
func progress(points, cost int64) int {
	if cost <= 0 || points >= cost {
		return 100
	}
	if points <= 0 {
		return 0
	}
	pct := decimal.NewFromInt(points).Mul(hundred).Div(decimal.NewFromInt(cost)).Floor()
	return int(pct.IntPart())
}

// NewlyUnlocked lists offers that are eligible at newPoints but were not at
// oldPoints.
func NewlyUnlocked(account *domain.Account, offers []domain.Offer, oldPoints int64) []domain.Offer {
	before := *account
	before.Points = oldPoints

	var unlocked []domain.Offer
	for i := range offers {
		if EvaluateEligibility(account, &offers[i]).Eligible() &&
			!EvaluateEligibility(&before, &offers[i]).Eligible() {
			unlocked = append(unlocked, offers[i])
		}
	}
	return unlocked
}
