package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/cafeloyalty/internal/domain"
	"github.com/set-night/cafeloyalty/internal/repository"
)

// OfferService is the offer catalog. Offers are never edited, only
// created and deleted by the admin who owns the shop.
type OfferService struct {
	db      *pgxpool.Pool
	queries *repository.Queries
}

func NewOfferService(db *pgxpool.Pool, queries *repository.Queries) *OfferService {
	return &OfferService{db: db, queries: queries}
}

type CreateOfferInput struct {
	ShopID      uuid.UUID
	Name        string
	Description string
	PointsCost  int64
}

func (in CreateOfferInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidOffer)
	}
	if in.PointsCost <= 0 {
		return fmt.Errorf("%w: points cost must be positive", domain.ErrInvalidOffer)
	}
	return nil
}

func (s *OfferService) Create(ctx context.Context, sess domain.Session, in CreateOfferInput) (domain.Offer, error) {
	if !sess.Valid() {
		return domain.Offer{}, domain.ErrNotAuthenticated
	}
	if !sess.IsAdmin() {
		return domain.Offer{}, domain.ErrForbidden
	}
	if err := in.Validate(); err != nil {
		return domain.Offer{}, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domain.Offer{}, repository.Unavailable(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback(ctx)

	qtx := s.queries.WithTx(tx)

	shop, err := qtx.GetShop(ctx, in.ShopID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Offer{}, domain.ErrShopNotFound
		}
		return domain.Offer{}, repository.Unavailable(fmt.Errorf("get shop: %w", err))
	}
	if shop.OwnerID != sess.AccountID {
		return domain.Offer{}, domain.ErrNotShopOwner
	}

	row, err := qtx.CreateOffer(ctx, repository.CreateOfferParams{
		ID:          uuid.New(),
		ShopID:      in.ShopID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		PointsCost:  in.PointsCost,
	})
	if err != nil {
		if repository.IsForeignKeyViolation(err) {
			return domain.Offer{}, domain.ErrShopNotFound
		}
		return domain.Offer{}, repository.Unavailable(fmt.Errorf("create offer: %w", err))
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Offer{}, repository.Unavailable(fmt.Errorf("commit: %w", err))
	}
	return rowToOffer(row), nil
}

// Delete removes an offer from the catalog. Existing redemptions of it
// stay in the clients' history.
func (s *OfferService) Delete(ctx context.Context, sess domain.Session, offerID uuid.UUID) error {
	if !sess.Valid() {
		return domain.ErrNotAuthenticated
	}
	if !sess.IsAdmin() {
		return domain.ErrForbidden
	}

	n, err := s.queries.DeleteOfferOwned(ctx, offerID, sess.AccountID)
	if err != nil {
		return repository.Unavailable(fmt.Errorf("delete offer: %w", err))
	}
	if n > 0 {
		return nil
	}
	if _, err := s.Get(ctx, offerID); err != nil {
		return err
	}
	return domain.ErrNotShopOwner
}

func (s *OfferService) Get(ctx context.Context, id uuid.UUID) (domain.Offer, error) {
	row, err := s.queries.GetOffer(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Offer{}, domain.ErrOfferNotFound
		}
		return domain.Offer{}, repository.Unavailable(fmt.Errorf("get offer: %w", err))
	}
	return rowToOffer(row), nil
}

func (s *OfferService) ListByShop(ctx context.Context, shopID uuid.UUID) ([]domain.Offer, error) {
	rows, err := s.queries.ListOffersByShop(ctx, shopID)
	if err != nil {
		return nil, repository.Unavailable(fmt.Errorf("list offers: %w", err))
	}
	return mapRows(rows, rowToOffer), nil
}

// ListOwned returns the offers of every shop the calling admin owns.
func (s *OfferService) ListOwned(ctx context.Context, sess domain.Session) ([]domain.Offer, error) {
	if !sess.Valid() {
		return nil, domain.ErrNotAuthenticated
	}
	if !sess.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	rows, err := s.queries.ListOffersByOwner(ctx, sess.AccountID)
	if err != nil {
		return nil, repository.Unavailable(fmt.Errorf("list owned offers: %w", err))
	}
	return mapRows(rows, rowToOffer), nil
}
