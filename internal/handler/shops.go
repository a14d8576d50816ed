package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/cafeloyalty/internal/middleware"
	tg "github.com/set-night/cafeloyalty/internal/telegram"
)

func (h *Handler) handleShops(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendShopsPage(ctx, b, update.Message.Chat.ID, 0, 0)
}

func (h *Handler) handleShopsPage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	answer(ctx, b, update, "")

	page, err := strconv.Atoi(strings.TrimPrefix(update.CallbackQuery.Data, callbackShopsPage))
	if err != nil {
		return
	}
	chatID, messageID := callbackTarget(update)
	h.sendShopsPage(ctx, b, chatID, page, messageID)
}

// sendShopsPage sends the directory page, or edits messageID in place when set.
func (h *Handler) sendShopsPage(ctx context.Context, b *bot.Bot, chatID int64, page int, messageID int) {
	shops, err := h.shopService.List(ctx)
	if err != nil {
		h.fail(ctx, b, chatID, "list shops", err)
		return
	}
	ratings, err := h.shopService.Ratings(ctx)
	if err != nil {
		slog.Warn("shop ratings unavailable", "error", err)
	}

	text, keyboard := shopPage(shops, ratings, preferredShopID(middleware.GetAccount(ctx)), page)
	if messageID != 0 {
		if err := tg.EditMessage(ctx, b, chatID, messageID, text, keyboard); err != nil {
			slog.Warn("edit shops page", "error", err)
		}
		return
	}
	if err := tg.SendLongMessage(ctx, b, chatID, text, keyboard); err != nil {
		slog.Error("send shops page", "error", err)
	}
}

func (h *Handler) handlePrefer(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	chatID, _ := callbackTarget(update)

	shopID, err := parseCallbackID(update.CallbackQuery.Data, callbackPrefer)
	if err != nil {
		answer(ctx, b, update, "")
		return
	}

	shop, err := h.shopService.Get(ctx, shopID)
	if err == nil {
		err = h.accountService.SetPreferredShop(ctx, middleware.GetSession(ctx), shopID)
	}
	if err != nil {
		answer(ctx, b, update, "")
		h.fail(ctx, b, chatID, "set preferred shop", err)
		return
	}
	answer(ctx, b, update, "✅ "+shop.Name)

	caption := fmt.Sprintf("✅ *%s* is now your coffee shop.\n📍 %s\n\nSee what you can get with /rewards.",
		tg.EscapeMarkdown(shop.Name), tg.EscapeMarkdown(shop.Address))
	if shop.PictureURL != "" {
		err := tg.SendPhotoURL(ctx, b, chatID, shop.PictureURL, caption, nil)
		if err == nil {
			return
		}
		slog.Warn("send shop picture, falling back to text", "error", err, "shop_id", shop.ID)
	}
	if err := tg.SendLongMessage(ctx, b, chatID, caption, nil); err != nil {
		slog.Error("send preferred shop", "error", err)
	}
}
