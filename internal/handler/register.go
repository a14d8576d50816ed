package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	callbackPrefer      = "prefer_"
	callbackRedeem      = "redeem_"
	callbackDeleteOffer = "deloffer_"
	callbackShopsPage   = "shops_"
	callbackNoop        = "noop"
)

// Register registers all command and callback handlers on the bot instance.
func (h *Handler) Register() {
	// Client commands (patterns omit the leading slash)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "start", bot.MatchTypeCommandStartOnly, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "help", bot.MatchTypeCommandStartOnly, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "shops", bot.MatchTypeCommandStartOnly, h.handleShops)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "rewards", bot.MatchTypeCommandStartOnly, h.handleRewards)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "history", bot.MatchTypeCommandStartOnly, h.handleHistory)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "review", bot.MatchTypeCommandStartOnly, h.handleReview)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "email", bot.MatchTypeCommandStartOnly, h.handleEmail)
	h.bot.RegisterHandlerMatchFunc(isLocation, h.handleLocation)

	// Admin commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "myshops", bot.MatchTypeCommandStartOnly, h.handleMyShops)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "addshop", bot.MatchTypeCommandStartOnly, h.handleAddShop)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "addoffer", bot.MatchTypeCommandStartOnly, h.handleAddOffer)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "offers", bot.MatchTypeCommandStartOnly, h.handleOffers)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "client", bot.MatchTypeCommandStartOnly, h.handleClient)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "award", bot.MatchTypeCommandStartOnly, h.handleAward)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "reviews", bot.MatchTypeCommandStartOnly, h.handleReviews)

	// Callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, callbackPrefer, bot.MatchTypePrefix, h.handlePrefer)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, callbackRedeem, bot.MatchTypePrefix, h.handleRedeem)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, callbackDeleteOffer, bot.MatchTypePrefix, h.handleDeleteOffer)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, callbackShopsPage, bot.MatchTypePrefix, h.handleShopsPage)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, callbackNoop, bot.MatchTypeExact, h.handleNoop)
}

func isLocation(update *models.Update) bool {
	return update.Message != nil && update.Message.Location != nil
}

// HandleDefault answers messages no other handler matched.
func (h *Handler) HandleDefault(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != models.ChatTypePrivate {
		return
	}
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   "🤔 Unknown command. Send /help to see what I can do.",
	})
}

// handleNoop is a no-op callback handler used for pagination indicators and other
// non-interactive inline buttons. It simply acknowledges the callback query.
func (h *Handler) handleNoop(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery != nil {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		})
	}
}
