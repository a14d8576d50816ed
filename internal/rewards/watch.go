package rewards

import (
	"context"
	"fmt"
	"iter"

	"github.com/set-night/cafeloyalty/internal/domain"
)

// ChangeFeed streams balance changes. Each call to Changes starts a new
// subscription; ranging over the sequence again restarts it.
type ChangeFeed interface {
	Changes(ctx context.Context) iter.Seq2[domain.AccountChange, error]
}

type AccountEvent struct {
	Change  domain.AccountChange
	Account *domain.Account
}

// Watch pairs every change from feed with a fresh snapshot of the account.
// Errors are yielded and the watch goes on for as long as the feed does;
// a feed that loses its connection ends its own sequence.
func Watch(ctx context.Context, feed ChangeFeed, store AccountStore) iter.Seq2[AccountEvent, error] {
	return func(yield func(AccountEvent, error) bool) {
		for change, err := range feed.Changes(ctx) {
			if err != nil {
				if !yield(AccountEvent{}, err) {
					return
				}
				continue
			}

			account, err := store.GetAccount(ctx, change.AccountID)
			if err != nil {
				if !yield(AccountEvent{Change: change}, fmt.Errorf("load account %s: %w", change.AccountID, err)) {
					return
				}
				continue
			}

			if !yield(AccountEvent{Change: change, Account: account}, nil) {
				return
			}
		}
	}
}
