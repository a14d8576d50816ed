package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type Transaction struct {
	ID          int64              `db:"id"`
	AccountID   uuid.UUID          `db:"account_id"`
	Amount      int64              `db:"amount"`
	TxType      string             `db:"tx_type"`
	Description string             `db:"description"`
	CreatedAt   pgtype.Timestamptz `db:"created_at"`
}

type CreateTransactionParams struct {
	AccountID   uuid.UUID
	Amount      int64
	TxType      string
	Description string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, `
		INSERT INTO transactions (account_id, amount, tx_type, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		arg.AccountID, arg.Amount, arg.TxType, arg.Description).Scan(&id)
	return id, err
}

func (q *Queries) ListTransactions(ctx context.Context, accountID uuid.UUID, limit int32) ([]Transaction, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, account_id, amount, tx_type, description, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, accountID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Transaction])
}
