package handler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/cafeloyalty/internal/middleware"
	tg "github.com/set-night/cafeloyalty/internal/telegram"
)

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	account := middleware.GetAccount(ctx)
	chatID := update.Message.Chat.ID
	if account == nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "⚠️ Could not load your account. Please try again later.",
		})
		return
	}

	if err := tg.SendLongMessage(ctx, b, chatID, formatWelcome(account, middleware.JustRegistered(ctx)), nil); err != nil {
		slog.Error("send welcome", "error", err)
	}
}

func (h *Handler) handleEmail(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if args == "" || strings.ContainsAny(args, " \t") {
		usage(ctx, b, chatID, "/email you@example.com")
		return
	}

	email, err := h.accountService.SetEmail(ctx, middleware.GetSession(ctx), args)
	if err != nil {
		h.fail(ctx, b, chatID, "set email", err)
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "✅ Email saved: " + email,
	})
}

// callbackTarget returns where the callback's message lives.
func callbackTarget(update *models.Update) (chatID int64, messageID int) {
	if msg := update.CallbackQuery.Message.Message; msg != nil {
		return msg.Chat.ID, msg.ID
	}
	return update.CallbackQuery.From.ID, 0
}

func answer(ctx context.Context, b *bot.Bot, update *models.Update, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
		Text:            text,
	})
}
