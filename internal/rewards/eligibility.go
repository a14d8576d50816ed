// Package rewards decides and applies point redemptions.
//
// Every write to an account's balance or redemption history goes through
// Engine. Reads used for display may be stale; Engine never trusts them and
// re-evaluates against the store at commit time.
package rewards

import (
	"fmt"

	"github.com/set-night/cafeloyalty/internal/domain"
)

type Status int

const (
	StatusEligible Status = iota
	StatusInsufficientPoints
	StatusAlreadyRedeemed
)

func (s Status) String() string {
	switch s {
	case StatusEligible:
		return "eligible"
	case StatusInsufficientPoints:
		return "insufficient_points"
	case StatusAlreadyRedeemed:
		return "already_redeemed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// EligibilityResult is the outcome of EvaluateEligibility. Shortfall is
// only set for StatusInsufficientPoints.
type EligibilityResult struct {
	Status    Status
	Shortfall int64
}

func (r EligibilityResult) Eligible() bool {
	return r.Status == StatusEligible
}

func (r EligibilityResult) String() string {
	if r.Status == StatusInsufficientPoints {
		return fmt.Sprintf("%s(%d)", r.Status, r.Shortfall)
	}
	return r.Status.String()
}

var (
	Eligible        = EligibilityResult{Status: StatusEligible}
	AlreadyRedeemed = EligibilityResult{Status: StatusAlreadyRedeemed}
)

func InsufficientPoints(shortfall int64) EligibilityResult {
	return EligibilityResult{Status: StatusInsufficientPoints, Shortfall: shortfall}
}

// EvaluateEligibility decides whether account may redeem offer right now.
// A prior redemption wins over a low balance so that a second attempt is
// always refused as a duplicate. It has no side effects.
func EvaluateEligibility(account *domain.Account, offer *domain.Offer) EligibilityResult {
	if account.HasRedeemed(offer.ID) {
		return AlreadyRedeemed
	}
	if account.Points < offer.PointsCost {
		return InsufficientPoints(offer.PointsCost - account.Points)
	}
	return Eligible
}
