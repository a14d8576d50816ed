package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// PanicReporter is told about recovered panics, e.g. the Telegram log chat.
type PanicReporter interface {
	LogError(ctx context.Context, source string, err error)
}

// ReportFunc adapts a function to PanicReporter.
type ReportFunc func(ctx context.Context, source string, err error)

func (f ReportFunc) LogError(ctx context.Context, source string, err error) {
	f(ctx, source, err)
}

// Recover returns middleware that recovers from panics in handlers.
func Recover(reporter PanicReporter) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("panic recovered in handler",
						"panic", r,
						"update_id", update.ID,
						"stack", string(debug.Stack()),
					)
					if reporter != nil {
						reporter.LogError(ctx, "panic", fmt.Errorf("%v", r))
					}
				}
			}()
			next(ctx, b, update)
		}
	}
}
