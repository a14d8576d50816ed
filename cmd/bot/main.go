package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/cafeloyalty"
	"github.com/set-night/cafeloyalty/internal/config"
	"github.com/set-night/cafeloyalty/internal/domain"
	"github.com/set-night/cafeloyalty/internal/handler"
	"github.com/set-night/cafeloyalty/internal/metrics"
	"github.com/set-night/cafeloyalty/internal/middleware"
	"github.com/set-night/cafeloyalty/internal/notifier"
	"github.com/set-night/cafeloyalty/internal/ops"
	"github.com/set-night/cafeloyalty/internal/repository"
	"github.com/set-night/cafeloyalty/internal/rewards"
	"github.com/set-night/cafeloyalty/internal/service"
	"github.com/set-night/cafeloyalty/internal/telegram"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := repository.RunMigrations(cfg.DatabaseURL, cafeloyalty.MigrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	queries := repository.New(pool)

	// Initialize services
	accountService := service.NewAccountService(pool, queries)
	shopService := service.NewShopService(pool, queries, service.NewPreviewService())
	offerService := service.NewOfferService(pool, queries)
	reviewService := service.NewReviewService(pool, queries)
	routingService := service.NewRoutingService(cfg)

	m := metrics.New()
	engine := rewards.NewEngine(accountService, rewards.WithObserver(m))
	limiter := middleware.NewChatLimiter(cfg.RateLimitPerMinute)

	// The telegram logger needs the bot, which needs the middlewares
	var tgLogger *telegram.TelegramLogger
	var h *handler.Handler

	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(middleware.ReportFunc(func(ctx context.Context, source string, err error) {
				tgLogger.LogError(ctx, source, err)
			})),
			middleware.Logging(),
			middleware.RateLimit(limiter),
			middleware.UserLoader(accountService, cfg, middleware.RegistrationFunc(func(ctx context.Context, a *domain.Account) {
				tgLogger.LogRegistration(ctx, a)
			})),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if h != nil {
				h.HandleDefault(ctx, b, update)
			}
		}),
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		slog.Error("failed to get bot info", "error", err)
		os.Exit(1)
	}

	if cfg.DropPendingUpdates {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			slog.Warn("failed to drop pending updates", "error", err)
		}
	}

	tgLogger = telegram.NewTelegramLogger(b, cfg)

	h = handler.New(handler.Deps{
		Bot:            b,
		Cfg:            cfg,
		AccountService: accountService,
		ShopService:    shopService,
		OfferService:   offerService,
		ReviewService:  reviewService,
		RoutingService: routingService,
		Engine:         engine,
		TgLogger:       tgLogger,
	})
	h.Register()

	// Background workers
	go limiter.Run(ctx)

	n := notifier.New(repository.NewChangeFeed(pool), accountService, offerService, telegram.NewMessenger(b), m)
	go n.Run(ctx)

	go func() {
		if err := ops.Serve(ctx, cfg.Port, ops.NewRouter(pool, m.Handler())); err != nil {
			slog.Error("ops server stopped", "error", err)
		}
	}()

	slog.Info("starting bot", "username", me.Username, "id", me.ID, "admins", cfg.AdminIDsString())
	b.Start(ctx)

	slog.Info("bot stopped gracefully")
}
