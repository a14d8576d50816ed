package handler

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/cafeloyalty/internal/domain"
	"github.com/set-night/cafeloyalty/internal/middleware"
	tg "github.com/set-night/cafeloyalty/internal/telegram"
	"github.com/shopspring/decimal"
)

// handleLocation routes from a shared location to the preferred shop.
func (h *Handler) handleLocation(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID
	loc := update.Message.Location

	account := middleware.GetAccount(ctx)
	if account == nil {
		h.fail(ctx, b, chatID, "route", domain.ErrNotAuthenticated)
		return
	}
	if account.PreferredShopID == nil {
		h.fail(ctx, b, chatID, "route", domain.ErrNoPreferredShop)
		return
	}

	shop, err := h.shopService.Get(ctx, *account.PreferredShopID)
	if err != nil {
		h.fail(ctx, b, chatID, "route", err)
		return
	}

	from := domain.Coordinate{
		Latitude:  decimal.NewFromFloat(loc.Latitude),
		Longitude: decimal.NewFromFloat(loc.Longitude),
	}
	route, err := h.routingService.Route(ctx, from, shop.Location())
	if err != nil {
		h.fail(ctx, b, chatID, "route", err)
		return
	}

	keyboard := tg.InlineKeyboard(tg.ButtonRow(tg.URLButton("🧭 Open map", directionsURL(from, shop.Location()))))
	if err := tg.SendLongMessage(ctx, b, chatID, formatRoute(shop, route), keyboard); err != nil {
		slog.Error("send route", "error", err)
		return
	}
	if err := tg.SendLocation(ctx, b, chatID, shop.Latitude.InexactFloat64(), shop.Longitude.InexactFloat64()); err != nil {
		slog.Warn("send shop location", "error", err)
	}
}
