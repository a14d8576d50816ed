package domain

import (
	"time"

	"github.com/google/uuid"
)

// Offer is immutable once created; it can only be deleted by the shop owner.
type Offer struct {
	ID          uuid.UUID
	ShopID      uuid.UUID
	Name        string
	Description string
	PointsCost  int64
	CreatedAt   time.Time
}
