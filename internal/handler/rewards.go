package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/cafeloyalty/internal/domain"
	"github.com/set-night/cafeloyalty/internal/middleware"
	"github.com/set-night/cafeloyalty/internal/rewards"
	tg "github.com/set-night/cafeloyalty/internal/telegram"
)

const historyTransactions = 10

func (h *Handler) handleRewards(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	account := middleware.GetAccount(ctx)
	if account == nil {
		h.fail(ctx, b, chatID, "rewards", domain.ErrNotAuthenticated)
		return
	}

	text, keyboard, err := h.rewardsView(ctx, account)
	if err != nil {
		h.fail(ctx, b, chatID, "rewards", err)
		return
	}
	if err := tg.SendLongMessage(ctx, b, chatID, text, keyboard); err != nil {
		slog.Error("send rewards", "error", err)
	}
}

// rewardsView projects the offers of the account's preferred shop.
func (h *Handler) rewardsView(ctx context.Context, account *domain.Account) (string, *models.InlineKeyboardMarkup, error) {
	if account.PreferredShopID == nil {
		return "", nil, domain.ErrNoPreferredShop
	}
	shop, err := h.shopService.Get(ctx, *account.PreferredShopID)
	if err != nil {
		return "", nil, err
	}
	offers, err := h.offerService.ListByShop(ctx, shop.ID)
	if err != nil {
		return "", nil, err
	}
	text, keyboard := rewardsCard(account, shop, rewards.Project(account, offers))
	return text, keyboard, nil
}

func (h *Handler) handleRedeem(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	chatID, messageID := callbackTarget(update)

	offerID, err := parseCallbackID(update.CallbackQuery.Data, callbackRedeem)
	if err != nil {
		answer(ctx, b, update, "")
		return
	}

	sess := middleware.GetSession(ctx)
	offer, err := h.offerService.Get(ctx, offerID)
	if err != nil {
		answer(ctx, b, update, "")
		h.fail(ctx, b, chatID, "redeem", err)
		return
	}

	outcome, err := h.engine.Redeem(ctx, sess, sess.AccountID, offer)
	if err != nil {
		answer(ctx, b, update, "")
		h.fail(ctx, b, chatID, "redeem", err)
		return
	}

	if !outcome.Redeemed {
		answer(ctx, b, update, rejectionText(outcome.Rejection))
	} else {
		answer(ctx, b, update, "✅")
	}

	// Refresh the card: the one the user tapped may be stale.
	account, err := h.accountService.GetAccount(ctx, sess.AccountID)
	if err != nil {
		slog.Warn("reload account after redeem", "error", err, "account_id", sess.AccountID)
	} else if messageID != 0 {
		text, keyboard, err := h.rewardsView(ctx, account)
		if err == nil {
			err = tg.EditMessage(ctx, b, chatID, messageID, text, keyboard)
		}
		if err != nil && !errors.Is(err, domain.ErrNoPreferredShop) {
			slog.Warn("refresh rewards card", "error", err)
		}
	}

	if !outcome.Redeemed {
		return
	}

	slog.Info("offer redeemed",
		"account_id", sess.AccountID,
		"offer_id", offer.ID,
		"points", outcome.Points,
	)
	if account == nil {
		account = middleware.GetAccount(ctx)
	}
	if account != nil {
		h.tgLogger.LogRedemption(ctx, account, outcome.Redemption, outcome.Points)
		if err := tg.SendLongMessage(ctx, b, chatID, formatRedeemed(account, outcome.Redemption, outcome.Points), nil); err != nil {
			slog.Error("send redemption code", "error", err)
		}
	}
}

func (h *Handler) handleHistory(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	account := middleware.GetAccount(ctx)
	if account == nil {
		h.fail(ctx, b, chatID, "history", domain.ErrNotAuthenticated)
		return
	}

	txs, err := h.accountService.ListTransactions(ctx, account.ID, historyTransactions)
	if err != nil {
		slog.Warn("list transactions", "error", err, "account_id", account.ID)
	}
	if err := tg.SendLongMessage(ctx, b, chatID, formatHistory(account, txs), nil); err != nil {
		slog.Error("send history", "error", err)
	}
}
