package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type Review struct {
	ID        uuid.UUID          `db:"id"`
	ShopID    uuid.UUID          `db:"shop_id"`
	UserID    uuid.UUID          `db:"user_id"`
	UserEmail string             `db:"user_email"`
	Body      string             `db:"body"`
	Rating    int16              `db:"rating"`
	CreatedAt pgtype.Timestamptz `db:"created_at"`
}

const reviewColumns = `id, shop_id, user_id, user_email, body, rating, created_at`

type CreateReviewParams struct {
	ID        uuid.UUID
	ShopID    uuid.UUID
	UserID    uuid.UUID
	UserEmail string
	Body      string
	Rating    int16
}

func (q *Queries) CreateReview(ctx context.Context, arg CreateReviewParams) (Review, error) {
	rows, err := q.db.Query(ctx, `
		INSERT INTO reviews (id, shop_id, user_id, user_email, body, rating)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+reviewColumns,
		arg.ID, arg.ShopID, arg.UserID, arg.UserEmail, arg.Body, arg.Rating)
	if err != nil {
		return Review{}, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[Review])
}

func (q *Queries) ListReviewsByShops(ctx context.Context, shopIDs []uuid.UUID) ([]Review, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+reviewColumns+` FROM reviews
		WHERE shop_id = ANY($1)
		ORDER BY created_at DESC`, shopIDs)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Review])
}
