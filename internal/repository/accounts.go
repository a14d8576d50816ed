package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type Account struct {
	ID              uuid.UUID          `db:"id"`
	TelegramID      int64              `db:"telegram_id"`
	Username        string             `db:"username"`
	FirstName       string             `db:"first_name"`
	Email           *string            `db:"email"`
	Role            string             `db:"role"`
	Points          int64              `db:"points"`
	PreferredShopID *uuid.UUID         `db:"preferred_shop_id"`
	CreatedAt       pgtype.Timestamptz `db:"created_at"`
	UpdatedAt       pgtype.Timestamptz `db:"updated_at"`
}

const accountColumns = `id, telegram_id, username, first_name, email, role, points, preferred_shop_id, created_at, updated_at`

func (q *Queries) getAccount(ctx context.Context, query string, arg any) (Account, error) {
	rows, err := q.db.Query(ctx, query, arg)
	if err != nil {
		return Account{}, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[Account])
}

func (q *Queries) GetAccountByID(ctx context.Context, id uuid.UUID) (Account, error) {
	return q.getAccount(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

func (q *Queries) GetAccountByTelegramID(ctx context.Context, telegramID int64) (Account, error) {
	return q.getAccount(ctx, `SELECT `+accountColumns+` FROM accounts WHERE telegram_id = $1`, telegramID)
}

func (q *Queries) GetAccountByEmail(ctx context.Context, email string) (Account, error) {
	return q.getAccount(ctx, `SELECT `+accountColumns+` FROM accounts WHERE lower(email) = lower($1)`, email)
}

func (q *Queries) GetAccountByUsername(ctx context.Context, username string) (Account, error) {
	return q.getAccount(ctx, `SELECT `+accountColumns+` FROM accounts WHERE lower(username) = lower($1) LIMIT 1`, username)
}

type CreateAccountParams struct {
	ID         uuid.UUID
	TelegramID int64
	Username   string
	FirstName  string
	Role       string
}

// CreateAccount inserts the account. It returns pgx.ErrNoRows when the
// telegram id is already registered.
func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (Account, error) {
	rows, err := q.db.Query(ctx, `
		INSERT INTO accounts (id, telegram_id, username, first_name, role)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (telegram_id) DO NOTHING
		RETURNING `+accountColumns,
		arg.ID, arg.TelegramID, arg.Username, arg.FirstName, arg.Role)
	if err != nil {
		return Account{}, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[Account])
}

type UpdateAccountInfoParams struct {
	ID        uuid.UUID
	Username  string
	FirstName string
	Role      string
}

func (q *Queries) UpdateAccountInfo(ctx context.Context, arg UpdateAccountInfoParams) error {
	_, err := q.db.Exec(ctx, `
		UPDATE accounts SET username = $2, first_name = $3, role = $4, updated_at = now()
		WHERE id = $1`,
		arg.ID, arg.Username, arg.FirstName, arg.Role)
	return err
}

func (q *Queries) SetPreferredShop(ctx context.Context, id, shopID uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE accounts SET preferred_shop_id = $2, updated_at = now()
		WHERE id = $1`, id, shopID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q *Queries) SetEmail(ctx context.Context, id uuid.UUID, email string) error {
	_, err := q.db.Exec(ctx, `UPDATE accounts SET email = $2, updated_at = now() WHERE id = $1`, id, email)
	return err
}

type CommitRedemptionParams struct {
	ID             uuid.UUID
	ExpectedPoints int64
	NewPoints      int64
	OfferID        uuid.UUID
}

// CommitRedemptionBalance moves the balance from ExpectedPoints to NewPoints
// only if it still equals ExpectedPoints and OfferID is not yet redeemed.
// It reports the number of rows changed: 0 means the precondition failed.
func (q *Queries) CommitRedemptionBalance(ctx context.Context, arg CommitRedemptionParams) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE accounts SET points = $3, updated_at = now()
		WHERE id = $1
		  AND points = $2
		  AND NOT EXISTS (
		      SELECT 1 FROM redemptions WHERE account_id = $1 AND offer_id = $4
		  )`,
		arg.ID, arg.ExpectedPoints, arg.NewPoints, arg.OfferID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q *Queries) IncrementPoints(ctx context.Context, id uuid.UUID, delta int64) (int64, error) {
	var points int64
	err := q.db.QueryRow(ctx, `
		UPDATE accounts SET points = points + $2, updated_at = now()
		WHERE id = $1
		RETURNING points`, id, delta).Scan(&points)
	return points, err
}
