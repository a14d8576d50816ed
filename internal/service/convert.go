package service

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/set-night/cafeloyalty/internal/domain"
	"github.com/set-night/cafeloyalty/internal/repository"
)

// pgTimestamptzToTime converts pgtype.Timestamptz to time.Time.
func pgTimestamptzToTime(ts pgtype.Timestamptz) time.Time {
	if ts.Valid {
		return ts.Time
	}
	return time.Time{}
}

// timeToPgTimestamptz converts time.Time to pgtype.Timestamptz.
func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: !t.IsZero()}
}

func rowToAccount(row repository.Account, history []repository.Redemption) *domain.Account {
	a := &domain.Account{
		ID:              row.ID,
		TelegramID:      row.TelegramID,
		Username:        row.Username,
		FirstName:       row.FirstName,
		Role:            domain.Role(row.Role),
		Points:          row.Points,
		PreferredShopID: row.PreferredShopID,
		CreatedAt:       pgTimestamptzToTime(row.CreatedAt),
		UpdatedAt:       pgTimestamptzToTime(row.UpdatedAt),
	}
	if row.Email != nil {
		a.Email = *row.Email
	}
	a.RedemptionHistory = make([]domain.Redemption, len(history))
	for i, r := range history {
		a.RedemptionHistory[i] = rowToRedemption(r)
	}
	return a
}

func rowToRedemption(row repository.Redemption) domain.Redemption {
	return domain.Redemption{
		OfferID:     row.OfferID,
		Name:        row.Name,
		Description: row.Description,
		ShopID:      row.ShopID,
		PointsCost:  row.PointsCost,
		RedeemedAt:  pgTimestamptzToTime(row.RedeemedAt),
	}
}

func rowToShop(row repository.Shop) domain.Shop {
	return domain.Shop{
		ID:         row.ID,
		Name:       row.Name,
		Address:    row.Address,
		Latitude:   row.Latitude,
		Longitude:  row.Longitude,
		PictureURL: row.PictureURL,
		OwnerID:    row.OwnerID,
		CreatedAt:  pgTimestamptzToTime(row.CreatedAt),
	}
}

func rowToOffer(row repository.Offer) domain.Offer {
	return domain.Offer{
		ID:          row.ID,
		ShopID:      row.ShopID,
		Name:        row.Name,
		Description: row.Description,
		PointsCost:  row.PointsCost,
		CreatedAt:   pgTimestamptzToTime(row.CreatedAt),
	}
}

func rowToReview(row repository.Review) domain.Review {
	return domain.Review{
		ID:        row.ID,
		ShopID:    row.ShopID,
		UserID:    row.UserID,
		UserEmail: row.UserEmail,
		Text:      row.Body,
		Rating:    int(row.Rating),
		CreatedAt: pgTimestamptzToTime(row.CreatedAt),
	}
}

func rowToTransaction(row repository.Transaction) domain.Transaction {
	return domain.Transaction{
		ID:          row.ID,
		AccountID:   row.AccountID,
		Amount:      row.Amount,
		TxType:      domain.TxType(row.TxType),
		Description: row.Description,
		CreatedAt:   pgTimestamptzToTime(row.CreatedAt),
	}
}

func mapRows[R, D any](rows []R, conv func(R) D) []D {
	out := make([]D, len(rows))
	for i, r := range rows {
		out[i] = conv(r)
	}
	return out
}
