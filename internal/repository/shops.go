package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type Shop struct {
	ID         uuid.UUID          `db:"id"`
	Name       string             `db:"name"`
	Address    string             `db:"address"`
	Latitude   decimal.Decimal    `db:"latitude"`
	Longitude  decimal.Decimal    `db:"longitude"`
	PictureURL string             `db:"picture_url"`
	OwnerID    uuid.UUID          `db:"owner_id"`
	CreatedAt  pgtype.Timestamptz `db:"created_at"`
}

const shopColumns = `id, name, address, latitude, longitude, picture_url, owner_id, created_at`

type CreateShopParams struct {
	ID         uuid.UUID
	Name       string
	Address    string
	Latitude   decimal.Decimal
	Longitude  decimal.Decimal
	PictureURL string
	OwnerID    uuid.UUID
}

func (q *Queries) CreateShop(ctx context.Context, arg CreateShopParams) (Shop, error) {
	rows, err := q.db.Query(ctx, `
		INSERT INTO shops (id, name, address, latitude, longitude, picture_url, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+shopColumns,
		arg.ID, arg.Name, arg.Address, arg.Latitude, arg.Longitude, arg.PictureURL, arg.OwnerID)
	if err != nil {
		return Shop{}, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[Shop])
}

func (q *Queries) GetShop(ctx context.Context, id uuid.UUID) (Shop, error) {
	rows, err := q.db.Query(ctx, `SELECT `+shopColumns+` FROM shops WHERE id = $1`, id)
	if err != nil {
		return Shop{}, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[Shop])
}

func (q *Queries) ListShops(ctx context.Context) ([]Shop, error) {
	rows, err := q.db.Query(ctx, `SELECT `+shopColumns+` FROM shops ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Shop])
}

func (q *Queries) ListShopsByOwner(ctx context.Context, ownerID uuid.UUID) ([]Shop, error) {
	rows, err := q.db.Query(ctx, `SELECT `+shopColumns+` FROM shops WHERE owner_id = $1 ORDER BY name, id`, ownerID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Shop])
}

type ShopRating struct {
	ShopID  uuid.UUID       `db:"shop_id"`
	Average decimal.Decimal `db:"average"`
	Count   int64           `db:"count"`
}

func (q *Queries) ShopRatings(ctx context.Context) ([]ShopRating, error) {
	rows, err := q.db.Query(ctx, `
		SELECT shop_id, round(avg(rating), 1) AS average, count(*) AS count
		FROM reviews
		GROUP BY shop_id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[ShopRating])
}
