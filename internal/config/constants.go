package config

import "time"

const (
	// RedeemMaxAttempts bounds commit attempts for a single redeem call:
	// the first try plus at most one retry after a conflict.
	RedeemMaxAttempts = 2

	// Database pool sizing
	DBMaxConns = 20
	DBMinConns = 2

	// Outbound HTTP
	RoutingTimeout = 15 * time.Second
	PreviewTimeout = 10 * time.Second
	PreviewMaxBody = 2 << 20
	RoutingMaxBody = 8 << 20

	// Ops server
	OpsReadHeaderTimeout = 5 * time.Second
	OpsShutdownTimeout   = 10 * time.Second

	// Rate limiter burst per chat
	RateLimitBurst = 5
	// Idle per-chat limiters are dropped after this long
	RateLimiterIdleTTL   = 10 * time.Minute
	RateLimiterSweepTick = time.Minute

	// Change feed reconnect backoff
	FeedRetryMin = time.Second
	FeedRetryMax = 30 * time.Second

	// Telegram limits
	MaxTelegramMessageLen = 4096
	TelegramLogTimeout    = 10 * time.Second

	// Reviews
	MinRating       = 1
	MaxRating       = 5
	MaxReviewLength = 1000

	// Progress bar width in the rewards card
	ProgressBarCells = 10

	// Shops per page in /shops
	ShopsPerPage = 5
)
