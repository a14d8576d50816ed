package domain

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID        uuid.UUID
	ShopID    uuid.UUID
	UserID    uuid.UUID
	UserEmail string
	Text      string
	Rating    int
	CreatedAt time.Time
}
