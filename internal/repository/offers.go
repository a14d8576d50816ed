package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type Offer struct {
	ID          uuid.UUID          `db:"id"`
	ShopID      uuid.UUID          `db:"shop_id"`
	Name        string             `db:"name"`
	Description string             `db:"description"`
	PointsCost  int64              `db:"points_cost"`
	CreatedAt   pgtype.Timestamptz `db:"created_at"`
}

const offerColumns = `id, shop_id, name, description, points_cost, created_at`

type CreateOfferParams struct {
	ID          uuid.UUID
	ShopID      uuid.UUID
	Name        string
	Description string
	PointsCost  int64
}

func (q *Queries) CreateOffer(ctx context.Context, arg CreateOfferParams) (Offer, error) {
	rows, err := q.db.Query(ctx, `
		INSERT INTO offers (id, shop_id, name, description, points_cost)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+offerColumns,
		arg.ID, arg.ShopID, arg.Name, arg.Description, arg.PointsCost)
	if err != nil {
		return Offer{}, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[Offer])
}

func (q *Queries) GetOffer(ctx context.Context, id uuid.UUID) (Offer, error) {
	rows, err := q.db.Query(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = $1`, id)
	if err != nil {
		return Offer{}, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[Offer])
}

func (q *Queries) ListOffersByShop(ctx context.Context, shopID uuid.UUID) ([]Offer, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+offerColumns+` FROM offers
		WHERE shop_id = $1
		ORDER BY points_cost, name`, shopID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Offer])
}

func (q *Queries) ListOffersByOwner(ctx context.Context, ownerID uuid.UUID) ([]Offer, error) {
	rows, err := q.db.Query(ctx, `
		SELECT o.id, o.shop_id, o.name, o.description, o.points_cost, o.created_at
		FROM offers o
		JOIN shops s ON s.id = o.shop_id
		WHERE s.owner_id = $1
		ORDER BY s.name, o.points_cost, o.name`, ownerID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Offer])
}

// DeleteOfferOwned deletes the offer only if ownerID owns its shop.
func (q *Queries) DeleteOfferOwned(ctx context.Context, id, ownerID uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		DELETE FROM offers o
		USING shops s
		WHERE o.id = $1 AND s.id = o.shop_id AND s.owner_id = $2`, id, ownerID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
