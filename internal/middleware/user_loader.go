package middleware

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/cafeloyalty/internal/domain"
)

type ctxKey string

const (
	AccountKey ctxKey = "account"
	SessionKey ctxKey = "session"
	CreatedKey ctxKey = "account_created"
)

// GetAccount extracts the caller's account from context.
func GetAccount(ctx context.Context) *domain.Account {
	a, ok := ctx.Value(AccountKey).(*domain.Account)
	if !ok {
		return nil
	}
	return a
}

// GetSession extracts the caller's session. Without one the zero
// (unauthenticated) session is returned.
func GetSession(ctx context.Context) domain.Session {
	s, _ := ctx.Value(SessionKey).(domain.Session)
	return s
}

// JustRegistered reports whether the account was created by this update.
func JustRegistered(ctx context.Context) bool {
	v, _ := ctx.Value(CreatedKey).(bool)
	return v
}

// WithAccount stores account and its session in ctx.
func WithAccount(ctx context.Context, account *domain.Account, created bool) context.Context {
	ctx = context.WithValue(ctx, AccountKey, account)
	ctx = context.WithValue(ctx, SessionKey, domain.NewSession(account))
	return context.WithValue(ctx, CreatedKey, created)
}

// AccountResolver registers or loads the account behind a Telegram user.
type AccountResolver interface {
	FindOrCreate(ctx context.Context, telegramID int64, firstName, username string, isAdmin bool) (*domain.Account, bool, error)
}

// RegistrationReporter is told about accounts created on first contact.
type RegistrationReporter interface {
	LogRegistration(ctx context.Context, a *domain.Account)
}

// RegistrationFunc adapts a function to RegistrationReporter.
type RegistrationFunc func(ctx context.Context, a *domain.Account)

func (f RegistrationFunc) LogRegistration(ctx context.Context, a *domain.Account) {
	f(ctx, a)
}

// UserLoader returns middleware that authenticates the Telegram sender and
// loads their account into context. Registrations are reported whatever the
// first update is.
func UserLoader(accounts AccountResolver, cfg interface{ IsAdmin(int64) bool }, reporter RegistrationReporter) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			from := sender(update)
			if from == nil || from.IsBot {
				next(ctx, b, update)
				return
			}

			account, created, err := accounts.FindOrCreate(ctx, from.ID, from.FirstName, from.Username, cfg.IsAdmin(from.ID))
			if err != nil {
				slog.Error("failed to load account", "error", err, "telegram_id", from.ID)
			} else if account != nil {
				ctx = WithAccount(ctx, account, created)
				if created {
					slog.Info("account registered", "account_id", account.ID, "telegram_id", account.TelegramID, "role", account.Role)
					if reporter != nil {
						reporter.LogRegistration(ctx, account)
					}
				}
			}

			next(ctx, b, update)
		}
	}
}

func sender(update *models.Update) *models.User {
	switch {
	case update.Message != nil:
		return update.Message.From
	case update.CallbackQuery != nil:
		return &update.CallbackQuery.From
	}
	return nil
}
