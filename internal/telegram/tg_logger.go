package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/cafeloyalty/internal/config"
	"github.com/set-night/cafeloyalty/internal/domain"
)

// TelegramLogger mirrors business events into topics of an admin chat.
// A nil logger or an unset chat id disables it.
type TelegramLogger struct {
	bot *bot.Bot
	cfg *config.Config
}

func NewTelegramLogger(b *bot.Bot, cfg *config.Config) *TelegramLogger {
	return &TelegramLogger{bot: b, cfg: cfg}
}

type LogType string

const (
	LogTypeError        LogType = "error"
	LogTypeRegistration LogType = "registration"
	LogTypeRedemption   LogType = "redemption"
	LogTypeAward        LogType = "award"
)

func (l *TelegramLogger) Log(ctx context.Context, logType LogType, message string) {
	if l == nil || l.bot == nil || l.cfg.LogTelegramChatID == 0 {
		return
	}

	topicID := l.getTopicID(logType)
	if topicID == 0 {
		return
	}

	if len([]rune(message)) > MaxMessageLen {
		message = string([]rune(message)[:MaxMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.TelegramLogTimeout)
	defer cancel()

	_, err := l.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          l.cfg.LogTelegramChatID,
		Text:            message,
		ParseMode:       models.ParseModeMarkdownV1,
		MessageThreadID: topicID,
	})
	if err != nil {
		slog.Error("failed to send telegram log", "type", logType, "error", err)
	}
}

func (l *TelegramLogger) LogError(ctx context.Context, source string, err error) {
	l.Log(ctx, LogTypeError, formatErrorLog(source, err, time.Now()))
}

func (l *TelegramLogger) LogRegistration(ctx context.Context, a *domain.Account) {
	l.Log(ctx, LogTypeRegistration, formatRegistrationLog(a))
}

func (l *TelegramLogger) LogRedemption(ctx context.Context, a *domain.Account, r domain.Redemption, balance int64) {
	l.Log(ctx, LogTypeRedemption, formatRedemptionLog(a, r, balance))
}

func (l *TelegramLogger) LogAward(ctx context.Context, admin, client *domain.Account, delta, balance int64) {
	l.Log(ctx, LogTypeAward, formatAwardLog(admin, client, delta, balance))
}

func formatErrorLog(source string, err error, at time.Time) string {
	return fmt.Sprintf("❌ *Error*\n\n*Context:* %s\n*Error:* `%s`\n*Time:* %s",
		EscapeMarkdown(source), err.Error(), at.Format("2006-01-02 15:04:05"))
}

func formatRegistrationLog(a *domain.Account) string {
	msg := fmt.Sprintf("👤 *New Registration*\n\n*ID:* `%d`\n*Name:* %s\n*Role:* %s",
		a.TelegramID, EscapeMarkdown(a.FirstName), a.Role)
	if a.Username != "" {
		msg += "\n*Username:* @" + EscapeMarkdown(a.Username)
	}
	return msg
}

func formatRedemptionLog(a *domain.Account, r domain.Redemption, balance int64) string {
	return fmt.Sprintf("🎁 *Redemption*\n\n*Client:* %s (`%d`)\n*Offer:* %s\n*Cost:* %d pts\n*Balance:* %d pts\n*Code:* `%s`",
		EscapeMarkdown(a.DisplayName()), a.TelegramID, EscapeMarkdown(r.Name), r.PointsCost, balance, r.Code(a.ID))
}

func formatAwardLog(admin, client *domain.Account, delta, balance int64) string {
	return fmt.Sprintf("➕ *Points Awarded*\n\n*Admin:* %s (`%d`)\n*Client:* %s (`%d`)\n*Amount:* %d pts\n*Balance:* %d pts",
		EscapeMarkdown(admin.DisplayName()), admin.TelegramID,
		EscapeMarkdown(client.DisplayName()), client.TelegramID, delta, balance)
}

func (l *TelegramLogger) getTopicID(logType LogType) int {
	switch logType {
	case LogTypeError:
		return l.cfg.LogTopicError
	case LogTypeRegistration:
		return l.cfg.LogTopicRegistration
	case LogTypeRedemption:
		return l.cfg.LogTopicRedemption
	case LogTypeAward:
		return l.cfg.LogTopicAward
	default:
		return 0
	}
}
