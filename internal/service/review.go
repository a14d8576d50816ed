package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/cafeloyalty/internal/config"
	"github.com/set-night/cafeloyalty/internal/domain"
	"github.com/set-night/cafeloyalty/internal/repository"
)

type ReviewService struct {
	db      *pgxpool.Pool
	queries *repository.Queries
}

func NewReviewService(db *pgxpool.Pool, queries *repository.Queries) *ReviewService {
	return &ReviewService{db: db, queries: queries}
}

// ValidateReview checks rating bounds and trims the text to the stored limit.
func ValidateReview(rating int, text string) (string, error) {
	if rating < config.MinRating || rating > config.MaxRating {
		return "", domain.ErrInvalidRating
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.ErrEmptyReview
	}
	if utf8.RuneCountInString(text) > config.MaxReviewLength {
		text = string([]rune(text)[:config.MaxReviewLength])
	}
	return text, nil
}

// Create stores the author's single review of shopID.
func (s *ReviewService) Create(ctx context.Context, author *domain.Account, shopID uuid.UUID, rating int, text string) (domain.Review, error) {
	if author == nil {
		return domain.Review{}, domain.ErrNotAuthenticated
	}
	text, err := ValidateReview(rating, text)
	if err != nil {
		return domain.Review{}, err
	}

	contact := author.Email
	if contact == "" {
		contact = author.DisplayName()
	}

	row, err := s.queries.CreateReview(ctx, repository.CreateReviewParams{
		ID:        uuid.New(),
		ShopID:    shopID,
		UserID:    author.ID,
		UserEmail: contact,
		Body:      text,
		Rating:    int16(rating),
	})
	if err != nil {
		switch {
		case repository.IsUniqueViolation(err):
			return domain.Review{}, domain.ErrAlreadyReviewed
		case repository.IsForeignKeyViolation(err):
			return domain.Review{}, domain.ErrShopNotFound
		}
		return domain.Review{}, repository.Unavailable(fmt.Errorf("create review: %w", err))
	}
	return rowToReview(row), nil
}

// ListOwned returns the reviews of every shop the calling admin owns.
func (s *ReviewService) ListOwned(ctx context.Context, sess domain.Session) ([]domain.Review, error) {
	if !sess.Valid() {
		return nil, domain.ErrNotAuthenticated
	}
	if !sess.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	shops, err := s.queries.ListShopsByOwner(ctx, sess.AccountID)
	if err != nil {
		return nil, repository.Unavailable(fmt.Errorf("list owned shops: %w", err))
	}
	if len(shops) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, len(shops))
	for i, sh := range shops {
		ids[i] = sh.ID
	}
	rows, err := s.queries.ListReviewsByShops(ctx, ids)
	if err != nil {
		return nil, repository.Unavailable(fmt.Errorf("list reviews: %w", err))
	}
	return mapRows(rows, rowToReview), nil
}
