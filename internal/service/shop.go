package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/cafeloyalty/internal/domain"
	"github.com/set-night/cafeloyalty/internal/repository"
	"github.com/shopspring/decimal"
)

type ShopService struct {
	db      *pgxpool.Pool
	queries *repository.Queries
	preview *PreviewService
}

func NewShopService(db *pgxpool.Pool, queries *repository.Queries, preview *PreviewService) *ShopService {
	return &ShopService{db: db, queries: queries, preview: preview}
}

type CreateShopInput struct {
	Name       string
	Address    string
	Latitude   decimal.Decimal
	Longitude  decimal.Decimal
	PictureURL string
}

// Validate checks the fields an admin typed in.
func (in CreateShopInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Address) == "" {
		return fmt.Errorf("%w: name and address are required", domain.ErrInvalidShop)
	}
	loc := domain.Coordinate{Latitude: in.Latitude, Longitude: in.Longitude}
	if !loc.Valid() {
		return fmt.Errorf("%w: coordinates out of range", domain.ErrInvalidShop)
	}
	return nil
}

// Create registers a shop owned by the calling admin. A picture URL that
// points at a web page is replaced by the page's preview image.
func (s *ShopService) Create(ctx context.Context, sess domain.Session, in CreateShopInput) (domain.Shop, error) {
	if !sess.Valid() {
		return domain.Shop{}, domain.ErrNotAuthenticated
	}
	if !sess.IsAdmin() {
		return domain.Shop{}, domain.ErrForbidden
	}
	if err := in.Validate(); err != nil {
		return domain.Shop{}, err
	}

	picture := strings.TrimSpace(in.PictureURL)
	if picture != "" && s.preview != nil {
		resolved, err := s.preview.ResolveImage(ctx, picture)
		if err != nil {
			slog.Warn("failed to resolve shop picture", "error", err, "url", picture)
		} else {
			picture = resolved
		}
	}

	row, err := s.queries.CreateShop(ctx, repository.CreateShopParams{
		ID:         uuid.New(),
		Name:       strings.TrimSpace(in.Name),
		Address:    strings.TrimSpace(in.Address),
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
		PictureURL: picture,
		OwnerID:    sess.AccountID,
	})
	if err != nil {
		return domain.Shop{}, repository.Unavailable(fmt.Errorf("create shop: %w", err))
	}
	return rowToShop(row), nil
}

func (s *ShopService) Get(ctx context.Context, id uuid.UUID) (domain.Shop, error) {
	row, err := s.queries.GetShop(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Shop{}, domain.ErrShopNotFound
		}
		return domain.Shop{}, repository.Unavailable(fmt.Errorf("get shop: %w", err))
	}
	return rowToShop(row), nil
}

func (s *ShopService) List(ctx context.Context) ([]domain.Shop, error) {
	rows, err := s.queries.ListShops(ctx)
	if err != nil {
		return nil, repository.Unavailable(fmt.Errorf("list shops: %w", err))
	}
	return mapRows(rows, rowToShop), nil
}

// ListOwned returns the shops of the calling admin.
func (s *ShopService) ListOwned(ctx context.Context, sess domain.Session) ([]domain.Shop, error) {
	if !sess.Valid() {
		return nil, domain.ErrNotAuthenticated
	}
	if !sess.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	rows, err := s.queries.ListShopsByOwner(ctx, sess.AccountID)
	if err != nil {
		return nil, repository.Unavailable(fmt.Errorf("list owned shops: %w", err))
	}
	return mapRows(rows, rowToShop), nil
}

// Ratings returns review aggregates keyed by shop. Shops without reviews are absent.
func (s *ShopService) Ratings(ctx context.Context) (map[uuid.UUID]domain.Rating, error) {
	rows, err := s.queries.ShopRatings(ctx)
	if err != nil {
		return nil, repository.Unavailable(fmt.Errorf("shop ratings: %w", err))
	}
	out := make(map[uuid.UUID]domain.Rating, len(rows))
	for _, r := range rows {
		out[r.ShopID] = domain.Rating{Average: r.Average, Count: r.Count}
	}
	return out, nil
}
