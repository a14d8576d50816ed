package domain

import (
	"time"

	"github.com/google/uuid"
)

type TxType string

const (
	TxTypeAward  TxType = "award"
	TxTypeRedeem TxType = "redeem"
)

// Transaction is an audit line for one change of an account's balance.
// Amount is signed: awards are positive, redemptions negative.
type Transaction struct {
	ID          int64
	AccountID   uuid.UUID
	Amount      int64
	TxType      TxType
	Description string
	CreatedAt   time.Time
}
