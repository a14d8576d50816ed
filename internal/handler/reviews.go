package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/set-night/cafeloyalty/internal/domain"
	"github.com/set-night/cafeloyalty/internal/middleware"
	tg "github.com/set-night/cafeloyalty/internal/telegram"
)

func (h *Handler) handleReview(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	account := middleware.GetAccount(ctx)
	if account == nil {
		h.fail(ctx, b, chatID, "review", domain.ErrNotAuthenticated)
		return
	}
	if account.PreferredShopID == nil {
		h.fail(ctx, b, chatID, "review", domain.ErrNoPreferredShop)
		return
	}

	rating, text, err := parseReview(commandArgs(update.Message.Text))
	if err != nil {
		usage(ctx, b, chatID, "/review <1-5> <your review>")
		return
	}

	review, err := h.reviewService.Create(ctx, account, *account.PreferredShopID, rating, text)
	if err != nil {
		h.fail(ctx, b, chatID, "create review", err)
		return
	}

	slog.Info("review created", "account_id", account.ID, "shop_id", review.ShopID, "rating", review.Rating)
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("✅ Thanks for your review! %d/5", review.Rating),
	})
}

func (h *Handler) handleReviews(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	sess := middleware.GetSession(ctx)

	shops, err := h.shopService.ListOwned(ctx, sess)
	if err != nil {
		h.fail(ctx, b, chatID, "list reviews", err)
		return
	}
	reviews, err := h.reviewService.ListOwned(ctx, sess)
	if err != nil {
		h.fail(ctx, b, chatID, "list reviews", err)
		return
	}

	names := make(map[uuid.UUID]string, len(shops))
	for _, s := range shops {
		names[s.ID] = s.Name
	}
	if err := tg.SendLongMessage(ctx, b, chatID, formatReviews(reviews, names), nil); err != nil {
		slog.Error("send reviews", "error", err)
	}
}
