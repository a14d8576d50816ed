package handler

import (
	"github.com/go-telegram/bot"
	"github.com/set-night/cafeloyalty/internal/config"
	"github.com/set-night/cafeloyalty/internal/rewards"
	"github.com/set-night/cafeloyalty/internal/service"
	"github.com/set-night/cafeloyalty/internal/telegram"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot            *bot.Bot
	cfg            *config.Config
	accountService *service.AccountService
	shopService    *service.ShopService
	offerService   *service.OfferService
	reviewService  *service.ReviewService
	routingService *service.RoutingService
	engine         *rewards.Engine
	tgLogger       *telegram.TelegramLogger
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot            *bot.Bot
	Cfg            *config.Config
	AccountService *service.AccountService
	ShopService    *service.ShopService
	OfferService   *service.OfferService
	ReviewService  *service.ReviewService
	RoutingService *service.RoutingService
	Engine         *rewards.Engine
	TgLogger       *telegram.TelegramLogger
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:            deps.Bot,
		cfg:            deps.Cfg,
		accountService: deps.AccountService,
		shopService:    deps.ShopService,
		offerService:   deps.OfferService,
		reviewService:  deps.ReviewService,
		routingService: deps.RoutingService,
		engine:         deps.Engine,
		tgLogger:       deps.TgLogger,
	}
}
