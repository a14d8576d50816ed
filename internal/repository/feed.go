package repository

import (
	"context"
	"fmt"
	"iter"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/cafeloyalty/internal/domain"
	"github.com/tidwall/gjson"
)

// AccountChangesChannel is the NOTIFY channel fed by the accounts trigger.
const AccountChangesChannel = "account_changes"

// ChangeFeed streams balance changes published by the accounts trigger.
type ChangeFeed struct {
	pool *pgxpool.Pool
}

func NewChangeFeed(pool *pgxpool.Pool) *ChangeFeed {
	return &ChangeFeed{pool: pool}
}

// Changes holds one pooled connection in LISTEN mode for as long as the
// caller keeps ranging. A connection failure is yielded once and ends the
// sequence; ranging again opens a new listener. A malformed payload is
// yielded as an error and listening continues.
func (f *ChangeFeed) Changes(ctx context.Context) iter.Seq2[domain.AccountChange, error] {
	return func(yield func(domain.AccountChange, error) bool) {
		pooled, err := f.pool.Acquire(ctx)
		if err != nil {
			yield(domain.AccountChange{}, Unavailable(fmt.Errorf("acquire listener: %w", err)))
			return
		}
		// A LISTENing session must not go back to the pool.
		conn := pooled.Hijack()
		defer conn.Close(context.Background())

		if _, err := conn.Exec(ctx, "LISTEN "+AccountChangesChannel); err != nil {
			yield(domain.AccountChange{}, Unavailable(fmt.Errorf("listen: %w", err)))
			return
		}

		for {
			n, err := conn.WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				yield(domain.AccountChange{}, Unavailable(fmt.Errorf("wait for notification: %w", err)))
				return
			}
			change, err := ParseAccountChange(n.Payload)
			if !yield(change, err) {
				return
			}
		}
	}
}

// ParseAccountChange decodes a trigger payload of the form
// {"id": "...", "old_points": 10, "new_points": 20}.
func ParseAccountChange(payload string) (domain.AccountChange, error) {
	if !gjson.Valid(payload) {
		return domain.AccountChange{}, fmt.Errorf("invalid account change payload %q", payload)
	}
	res := gjson.GetMany(payload, "id", "old_points", "new_points")
	if !res[0].Exists() || !res[1].Exists() || !res[2].Exists() {
		return domain.AccountChange{}, fmt.Errorf("incomplete account change payload %q", payload)
	}
	id, err := uuid.Parse(res[0].String())
	if err != nil {
		return domain.AccountChange{}, fmt.Errorf("account change id: %w", err)
	}
	return domain.AccountChange{
		AccountID: id,
		OldPoints: res[1].Int(),
		NewPoints: res[2].Int(),
	}, nil
}
