package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type Redemption struct {
	AccountID   uuid.UUID          `db:"account_id"`
	OfferID     uuid.UUID          `db:"offer_id"`
	ShopID      uuid.UUID          `db:"shop_id"`
	Name        string             `db:"name"`
	Description string             `db:"description"`
	PointsCost  int64              `db:"points_cost"`
	RedeemedAt  pgtype.Timestamptz `db:"redeemed_at"`
}

func (q *Queries) CreateRedemption(ctx context.Context, arg Redemption) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO redemptions (account_id, offer_id, shop_id, name, description, points_cost, redeemed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		arg.AccountID, arg.OfferID, arg.ShopID, arg.Name, arg.Description, arg.PointsCost, arg.RedeemedAt)
	return err
}

func (q *Queries) ListRedemptions(ctx context.Context, accountID uuid.UUID) ([]Redemption, error) {
	rows, err := q.db.Query(ctx, `
		SELECT account_id, offer_id, shop_id, name, description, points_cost, redeemed_at
		FROM redemptions
		WHERE account_id = $1
		ORDER BY redeemed_at, id`, accountID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Redemption])
}
