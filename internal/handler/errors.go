package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/set-night/cafeloyalty/internal/domain"
)

// userMessage maps an error to the reply the user sees. The second result
// is false for errors that are not the user's doing and need reporting.
func userMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, errUsage):
		return "❌ Wrong format.", true
	case errors.Is(err, domain.ErrNotAuthenticated):
		return "🔒 Please send /start first.", true
	case errors.Is(err, domain.ErrForbidden):
		return "⛔ This command is for shop admins.", true
	case errors.Is(err, domain.ErrAccountNotFound):
		return "❌ Client not found.", true
	case errors.Is(err, domain.ErrShopNotFound):
		return "❌ Shop not found.", true
	case errors.Is(err, domain.ErrOfferNotFound):
		return "❌ This offer is no longer available.", true
	case errors.Is(err, domain.ErrInvalidAmount):
		return "❌ Points must be a positive whole number.", true
	case errors.Is(err, domain.ErrNotShopOwner):
		return "⛔ That shop belongs to another admin.", true
	case errors.Is(err, domain.ErrInvalidShop):
		return "❌ Invalid shop: check the name, address and coordinates.", true
	case errors.Is(err, domain.ErrInvalidOffer):
		return "❌ Invalid offer: it needs a name and a positive points cost.", true
	case errors.Is(err, domain.ErrInvalidRating):
		return "❌ Rating must be between 1 and 5.", true
	case errors.Is(err, domain.ErrEmptyReview):
		return "❌ Please write a few words about the shop.", true
	case errors.Is(err, domain.ErrAlreadyReviewed):
		return "ℹ️ You have already reviewed this shop.", true
	case errors.Is(err, domain.ErrNoPreferredShop):
		return "☕ Pick your shop first with /shops.", true
	case errors.Is(err, domain.ErrInvalidEmail):
		return "❌ That does not look like an email address.", true
	case errors.Is(err, domain.ErrEmailTaken):
		return "❌ That email is already used by another account.", true
	case errors.Is(err, domain.ErrRouteNotFound):
		return "🗺 No route found to your shop.", true
	case errors.Is(err, domain.ErrConflict):
		return "⚠️ Your balance changed in the meantime. Please try again.", false
	case errors.Is(err, domain.ErrBackendUnavailable):
		return "⚠️ Service temporarily unavailable. Please try again later.", false
	default:
		return "❌ Something went wrong. Please try again later.", false
	}
}

// fail replies with the user-facing message for err and reports
// unexpected errors.
func (h *Handler) fail(ctx context.Context, b *bot.Bot, chatID int64, source string, err error) {
	msg, expected := userMessage(err)
	if !expected {
		slog.Error(source, "error", err, "chat_id", chatID)
		h.tgLogger.LogError(ctx, source, err)
	}
	b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: msg})
}

// usage replies with the expected command syntax.
func usage(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Usage: " + text})
}
