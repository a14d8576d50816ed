package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

type Account struct {
	ID              uuid.UUID
	TelegramID      int64
	Username        string
	FirstName       string
	Email           string
	Role            Role
	Points          int64
	PreferredShopID *uuid.UUID

	// RedemptionHistory is ordered by RedeemedAt, oldest first.
	RedemptionHistory []Redemption

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// HasRedeemed reports whether the history already holds offerID.
func (a *Account) HasRedeemed(offerID uuid.UUID) bool {
	for _, r := range a.RedemptionHistory {
		if r.OfferID == offerID {
			return true
		}
	}
	return false
}

// DisplayName picks the most human label available.
func (a *Account) DisplayName() string {
	switch {
	case a.FirstName != "":
		return a.FirstName
	case a.Username != "":
		return "@" + a.Username
	case a.Email != "":
		return a.Email
	default:
		return a.ID.String()
	}
}

type Redemption struct {
	OfferID     uuid.UUID
	Name        string
	Description string
	ShopID      uuid.UUID
	PointsCost  int64
	RedeemedAt  time.Time
}

// Code is what the barista scans to honour a redemption.
func (r Redemption) Code(accountID uuid.UUID) string {
	return fmt.Sprintf("%s_%s", accountID, r.OfferID)
}

// AccountChange is emitted whenever an account's point balance changes.
type AccountChange struct {
	AccountID uuid.UUID
	OldPoints int64
	NewPoints int64
}

func (c AccountChange) Delta() int64 {
	return c.NewPoints - c.OldPoints
}

// AccountUpdate is a redemption commit conditioned on the state the
// caller observed: Points == ExpectedPoints and no history entry for
// Entry.OfferID.
type AccountUpdate struct {
	ID             uuid.UUID
	ExpectedPoints int64
	NewPoints      int64
	Entry          Redemption
}
