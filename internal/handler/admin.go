package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/set-night/cafeloyalty/internal/domain"
	"github.com/set-night/cafeloyalty/internal/middleware"
	"github.com/set-night/cafeloyalty/internal/service"
	tg "github.com/set-night/cafeloyalty/internal/telegram"
)

func (h *Handler) handleMyShops(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	shops, err := h.shopService.ListOwned(ctx, middleware.GetSession(ctx))
	if err != nil {
		h.fail(ctx, b, chatID, "list owned shops", err)
		return
	}
	if err := tg.SendLongMessage(ctx, b, chatID, formatOwnedShops(shops), nil); err != nil {
		slog.Error("send owned shops", "error", err)
	}
}

func (h *Handler) handleAddShop(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	sess := middleware.GetSession(ctx)
	if !sess.IsAdmin() {
		h.fail(ctx, b, chatID, "add shop", domain.ErrForbidden)
		return
	}

	in, err := parseAddShop(commandArgs(update.Message.Text))
	if err != nil {
		usage(ctx, b, chatID, "/addshop name | address | latitude | longitude | picture or page url")
		return
	}

	shop, err := h.shopService.Create(ctx, sess, in)
	if err != nil {
		h.fail(ctx, b, chatID, "add shop", err)
		return
	}

	slog.Info("shop created", "shop_id", shop.ID, "owner_id", shop.OwnerID)
	text := "✅ Shop created\n\n" + formatShopLine(1, shop) + "\nAdd offers with /addoffer."
	if err := tg.SendLongMessage(ctx, b, chatID, text, nil); err != nil {
		slog.Error("send shop created", "error", err)
	}
}

func (h *Handler) handleAddOffer(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	sess := middleware.GetSession(ctx)

	args, err := parseAddOffer(commandArgs(update.Message.Text))
	if err != nil {
		usage(ctx, b, chatID, "/addoffer shop# | name | description | points\nShop numbers are listed by /myshops.")
		return
	}

	shops, err := h.shopService.ListOwned(ctx, sess)
	if err != nil {
		h.fail(ctx, b, chatID, "add offer", err)
		return
	}
	if args.ShopNumber > len(shops) {
		h.fail(ctx, b, chatID, "add offer", domain.ErrShopNotFound)
		return
	}
	shop := shops[args.ShopNumber-1]

	offer, err := h.offerService.Create(ctx, sess, service.CreateOfferInput{
		ShopID:      shop.ID,
		Name:        args.Name,
		Description: args.Description,
		PointsCost:  args.PointsCost,
	})
	if err != nil {
		h.fail(ctx, b, chatID, "add offer", err)
		return
	}

	slog.Info("offer created", "offer_id", offer.ID, "shop_id", shop.ID, "points_cost", offer.PointsCost)
	text := fmt.Sprintf("✅ Offer *%s* (%d pts) added to *%s*.",
		tg.EscapeMarkdown(offer.Name), offer.PointsCost, tg.EscapeMarkdown(shop.Name))
	if err := tg.SendLongMessage(ctx, b, chatID, text, nil); err != nil {
		slog.Error("send offer created", "error", err)
	}
}

func (h *Handler) handleOffers(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendOwnedOffers(ctx, b, update.Message.Chat.ID, 0)
}

// sendOwnedOffers sends the admin's offer list, or edits messageID in place.
func (h *Handler) sendOwnedOffers(ctx context.Context, b *bot.Bot, chatID int64, messageID int) {
	sess := middleware.GetSession(ctx)
	shops, err := h.shopService.ListOwned(ctx, sess)
	if err != nil {
		h.fail(ctx, b, chatID, "list offers", err)
		return
	}
	offers, err := h.offerService.ListOwned(ctx, sess)
	if err != nil {
		h.fail(ctx, b, chatID, "list offers", err)
		return
	}

	names := make(map[uuid.UUID]string, len(shops))
	for _, s := range shops {
		names[s.ID] = s.Name
	}
	text, keyboard := formatOwnedOffers(offers, names)

	if messageID != 0 {
		if err := tg.EditMessage(ctx, b, chatID, messageID, text, keyboard); err != nil {
			slog.Warn("edit offers list", "error", err)
		}
		return
	}
	if err := tg.SendLongMessage(ctx, b, chatID, text, keyboard); err != nil {
		slog.Error("send offers list", "error", err)
	}
}

func (h *Handler) handleDeleteOffer(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	chatID, messageID := callbackTarget(update)

	offerID, err := parseCallbackID(update.CallbackQuery.Data, callbackDeleteOffer)
	if err != nil {
		answer(ctx, b, update, "")
		return
	}

	err = h.offerService.Delete(ctx, middleware.GetSession(ctx), offerID)
	switch {
	case err == nil:
		slog.Info("offer deleted", "offer_id", offerID)
		answer(ctx, b, update, "🗑 Deleted")
	case errors.Is(err, domain.ErrOfferNotFound):
		answer(ctx, b, update, "Already deleted")
	default:
		answer(ctx, b, update, "")
		h.fail(ctx, b, chatID, "delete offer", err)
		return
	}
	h.sendOwnedOffers(ctx, b, chatID, messageID)
}

func (h *Handler) handleClient(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	query := commandArgs(update.Message.Text)
	if query == "" {
		usage(ctx, b, chatID, "/client <email|@username>")
		return
	}

	client, err := h.accountService.FindClient(ctx, middleware.GetSession(ctx), query)
	if err != nil {
		h.fail(ctx, b, chatID, "find client", err)
		return
	}

	var shopName string
	if client.PreferredShopID != nil {
		if shop, err := h.shopService.Get(ctx, *client.PreferredShopID); err == nil {
			shopName = shop.Name
		}
	}
	if err := tg.SendLongMessage(ctx, b, chatID, formatClient(client, shopName), nil); err != nil {
		slog.Error("send client", "error", err)
	}
}

func (h *Handler) handleAward(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	sess := middleware.GetSession(ctx)

	query, points, err := parseAward(commandArgs(update.Message.Text))
	if err != nil {
		usage(ctx, b, chatID, "/award <email|@username> <points>")
		return
	}

	client, err := h.accountService.FindClient(ctx, sess, query)
	if err != nil {
		h.fail(ctx, b, chatID, "award points", err)
		return
	}

	admin := middleware.GetAccount(ctx)
	balance, err := h.engine.AwardPoints(ctx, sess, client.ID, points, "Awarded by "+admin.DisplayName())
	if err != nil {
		h.fail(ctx, b, chatID, "award points", err)
		return
	}

	slog.Info("points awarded",
		"admin_id", sess.AccountID,
		"account_id", client.ID,
		"delta", points,
		"balance", balance,
	)
	h.tgLogger.LogAward(ctx, admin, client, points, balance)

	text := fmt.Sprintf("✅ Awarded *%d* pts to %s. New balance: *%d* pts.",
		points, tg.EscapeMarkdown(client.DisplayName()), balance)
	if err := tg.SendLongMessage(ctx, b, chatID, text, nil); err != nil {
		slog.Error("send award", "error", err)
	}
}
