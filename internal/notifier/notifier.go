// Package notifier tells clients when their balance grows.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/set-night/cafeloyalty/internal/config"
	"github.com/set-night/cafeloyalty/internal/domain"
	"github.com/set-night/cafeloyalty/internal/rewards"
	"github.com/set-night/cafeloyalty/internal/telegram"
)

type OfferLister interface {
	ListByShop(ctx context.Context, shopID uuid.UUID) ([]domain.Offer, error)
}

type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

type Stats interface {
	NotificationSent(ok bool)
	FeedReconnected()
}

type Notifier struct {
	feed    rewards.ChangeFeed
	store   rewards.AccountStore
	offers  OfferLister
	send    Messenger
	stats   Stats
	backoff *backoff.ExponentialBackOff
}

func New(feed rewards.ChangeFeed, store rewards.AccountStore, offers OfferLister, send Messenger, stats Stats) *Notifier {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = config.FeedRetryMin
	b.MaxInterval = config.FeedRetryMax
	return &Notifier{feed: feed, store: store, offers: offers, send: send, stats: stats, backoff: b}
}

// Run consumes the change feed until ctx is done, re-opening it with
// exponential backoff whenever it fails.
func (n *Notifier) Run(ctx context.Context) {
	slog.Info("notifier started")
	for {
		n.consume(ctx)
		if ctx.Err() != nil {
			slog.Info("notifier stopped")
			return
		}

		wait := n.backoff.NextBackOff()
		slog.Warn("account change feed closed, reconnecting", "in", wait)
		select {
		case <-ctx.Done():
			slog.Info("notifier stopped")
			return
		case <-time.After(wait):
		}
		n.stats.FeedReconnected()
	}
}

func (n *Notifier) consume(ctx context.Context) {
	for ev, err := range rewards.Watch(ctx, n.feed, n.store) {
		if err != nil {
			if ctx.Err() == nil {
				slog.Error("account change event failed", "error", err, "account_id", ev.Change.AccountID)
			}
			continue
		}
		n.backoff.Reset()
		n.Handle(ctx, ev)
	}
}

// Handle notifies the owner of ev.Account about a positive balance change.
func (n *Notifier) Handle(ctx context.Context, ev rewards.AccountEvent) {
	delta := ev.Change.Delta()
	if delta <= 0 || ev.Account == nil || ev.Account.TelegramID == 0 {
		return
	}

	var unlocked []domain.Offer
	if shopID := ev.Account.PreferredShopID; shopID != nil {
		offers, err := n.offers.ListByShop(ctx, *shopID)
		if err != nil {
			slog.Warn("failed to list offers for notification", "error", err, "shop_id", *shopID)
		} else {
			unlocked = rewards.NewlyUnlocked(ev.Account, offers, ev.Change.OldPoints)
		}
	}

	text := FormatBalanceIncrease(delta, ev.Account.Points, unlocked)
	err := n.send.SendText(ctx, ev.Account.TelegramID, text)
	if err != nil {
		slog.Warn("failed to send balance notification", "error", err, "account_id", ev.Account.ID)
	}
	n.stats.NotificationSent(err == nil)
}

func FormatBalanceIncrease(delta, balance int64, unlocked []domain.Offer) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🎉 You earned *+%d* points!\nBalance: *%d* pts", delta, balance)
	if len(unlocked) > 0 {
		sb.WriteString("\n\n🔓 Now unlocked:")
		for _, o := range unlocked {
			fmt.Fprintf(&sb, "\n• %s (%d pts)", telegram.EscapeMarkdown(o.Name), o.PointsCost)
		}
		sb.WriteString("\n\nOpen /rewards to redeem.")
	}
	return sb.String()
}
