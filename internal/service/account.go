package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/cafeloyalty/internal/domain"
	"github.com/set-night/cafeloyalty/internal/repository"
)

// AccountService is the Postgres-backed account store. It satisfies
// rewards.AccountStore and also owns profile operations.
type AccountService struct {
	db      *pgxpool.Pool
	queries *repository.Queries
}

func NewAccountService(db *pgxpool.Pool, queries *repository.Queries) *AccountService {
	return &AccountService{db: db, queries: queries}
}

// FindOrCreate resolves the account of a Telegram user, registering it on
// first contact. The role follows the current admin list.
func (s *AccountService) FindOrCreate(ctx context.Context, telegramID int64, firstName, username string, isAdmin bool) (*domain.Account, bool, error) {
	role := domain.RoleClient
	if isAdmin {
		role = domain.RoleAdmin
	}

	row, err := s.queries.GetAccountByTelegramID(ctx, telegramID)
	if err == nil {
		if row.FirstName != firstName || row.Username != username || row.Role != string(role) {
			if err := s.queries.UpdateAccountInfo(ctx, repository.UpdateAccountInfoParams{
				ID:        row.ID,
				Username:  username,
				FirstName: firstName,
				Role:      string(role),
			}); err != nil {
				slog.Warn("failed to update account info", "error", err, "account_id", row.ID)
			} else {
				row.FirstName, row.Username, row.Role = firstName, username, string(role)
			}
		}
		return s.load(ctx, s.queries, row)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, repository.Unavailable(fmt.Errorf("get account: %w", err))
	}

	row, err = s.queries.CreateAccount(ctx, repository.CreateAccountParams{
		ID:         uuid.New(),
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		Role:       string(role),
	})
	if errors.Is(err, pgx.ErrNoRows) {
		// A concurrent update from the same user registered it first.
		account, err := s.GetByTelegramID(ctx, telegramID)
		return account, false, err
	}
	if err != nil {
		return nil, false, repository.Unavailable(fmt.Errorf("create account: %w", err))
	}
	account, _, err := s.load(ctx, s.queries, row)
	return account, true, err
}

func (s *AccountService) load(ctx context.Context, q *repository.Queries, row repository.Account) (*domain.Account, bool, error) {
	history, err := q.ListRedemptions(ctx, row.ID)
	if err != nil {
		return nil, false, repository.Unavailable(fmt.Errorf("list redemptions: %w", err))
	}
	return rowToAccount(row, history), false, nil
}

// GetAccount reads the balance and the history from one snapshot.
func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, repository.Unavailable(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback(ctx)

	qtx := s.queries.WithTx(tx)
	row, err := qtx.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, repository.Unavailable(fmt.Errorf("get account: %w", err))
	}
	account, _, err := s.load(ctx, qtx, row)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, repository.Unavailable(fmt.Errorf("commit: %w", err))
	}
	return account, nil
}

// CommitAccountUpdate writes the new balance and the history entry in one
// transaction, provided the stored balance still equals u.ExpectedPoints and
// the offer is not yet in the history.
func (s *AccountService) CommitAccountUpdate(ctx context.Context, u domain.AccountUpdate) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return repository.Unavailable(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback(ctx)

	qtx := s.queries.WithTx(tx)

	n, err := qtx.CommitRedemptionBalance(ctx, repository.CommitRedemptionParams{
		ID:             u.ID,
		ExpectedPoints: u.ExpectedPoints,
		NewPoints:      u.NewPoints,
		OfferID:        u.Entry.OfferID,
	})
	if err != nil {
		if repository.IsCheckViolation(err) {
			return domain.ErrConflict
		}
		return repository.Unavailable(fmt.Errorf("update balance: %w", err))
	}
	if n == 0 {
		if _, err := qtx.GetAccountByID(ctx, u.ID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrAccountNotFound
			}
			return repository.Unavailable(fmt.Errorf("get account: %w", err))
		}
		return domain.ErrConflict
	}

	err = qtx.CreateRedemption(ctx, repository.Redemption{
		AccountID:   u.ID,
		OfferID:     u.Entry.OfferID,
		ShopID:      u.Entry.ShopID,
		Name:        u.Entry.Name,
		Description: u.Entry.Description,
		PointsCost:  u.Entry.PointsCost,
		RedeemedAt:  timeToPgTimestamptz(u.Entry.RedeemedAt),
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return domain.ErrConflict
		}
		return repository.Unavailable(fmt.Errorf("create redemption: %w", err))
	}

	if _, err := qtx.CreateTransaction(ctx, repository.CreateTransactionParams{
		AccountID:   u.ID,
		Amount:      u.NewPoints - u.ExpectedPoints,
		TxType:      string(domain.TxTypeRedeem),
		Description: u.Entry.Name,
	}); err != nil {
		return repository.Unavailable(fmt.Errorf("create transaction: %w", err))
	}

	if err := tx.Commit(ctx); err != nil {
		return repository.Unavailable(fmt.Errorf("commit: %w", err))
	}
	return nil
}

// IncrementPoints adds delta to the stored balance and records an award.
func (s *AccountService) IncrementPoints(ctx context.Context, id uuid.UUID, delta int64, description string) (int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, repository.Unavailable(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback(ctx)

	qtx := s.queries.WithTx(tx)

	points, err := qtx.IncrementPoints(ctx, id, delta)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrAccountNotFound
		}
		if repository.IsCheckViolation(err) {
			return 0, domain.ErrInvalidAmount
		}
		return 0, repository.Unavailable(fmt.Errorf("increment points: %w", err))
	}

	if _, err := qtx.CreateTransaction(ctx, repository.CreateTransactionParams{
		AccountID:   id,
		Amount:      delta,
		TxType:      string(domain.TxTypeAward),
		Description: description,
	}); err != nil {
		return 0, repository.Unavailable(fmt.Errorf("create transaction: %w", err))
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, repository.Unavailable(fmt.Errorf("commit: %w", err))
	}
	return points, nil
}

// SetPreferredShop points the caller's account at an existing shop.
func (s *AccountService) SetPreferredShop(ctx context.Context, sess domain.Session, shopID uuid.UUID) error {
	if !sess.Valid() {
		return domain.ErrNotAuthenticated
	}
	n, err := s.queries.SetPreferredShop(ctx, sess.AccountID, shopID)
	if err != nil {
		if repository.IsForeignKeyViolation(err) {
			return domain.ErrShopNotFound
		}
		return repository.Unavailable(fmt.Errorf("set preferred shop: %w", err))
	}
	if n == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// SetEmail stores the caller's contact address, which admins use to find them.
func (s *AccountService) SetEmail(ctx context.Context, sess domain.Session, email string) (string, error) {
	if !sess.Valid() {
		return "", domain.ErrNotAuthenticated
	}
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return "", err
	}
	if err := s.queries.SetEmail(ctx, sess.AccountID, normalized); err != nil {
		if repository.IsUniqueViolation(err) {
			return "", domain.ErrEmailTaken
		}
		return "", repository.Unavailable(fmt.Errorf("set email: %w", err))
	}
	return normalized, nil
}

// NormalizeEmail accepts a bare address and lower-cases it.
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return "", domain.ErrInvalidEmail
	}
	return strings.ToLower(email), nil
}

// FindClient looks an account up by email or by @username. Only admins may
// search.
func (s *AccountService) FindClient(ctx context.Context, sess domain.Session, query string) (*domain.Account, error) {
	if !sess.Valid() {
		return nil, domain.ErrNotAuthenticated
	}
	if !sess.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	query = strings.TrimSpace(query)
	var (
		row repository.Account
		err error
	)
	switch {
	case strings.HasPrefix(query, "@"):
		row, err = s.queries.GetAccountByUsername(ctx, strings.TrimPrefix(query, "@"))
	case strings.Contains(query, "@"):
		row, err = s.queries.GetAccountByEmail(ctx, query)
	default:
		row, err = s.queries.GetAccountByUsername(ctx, query)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, repository.Unavailable(fmt.Errorf("find client: %w", err))
	}
	account, _, err := s.load(ctx, s.queries, row)
	return account, err
}

func (s *AccountService) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.Account, error) {
	row, err := s.queries.GetAccountByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, repository.Unavailable(fmt.Errorf("get account: %w", err))
	}
	account, _, err := s.load(ctx, s.queries, row)
	return account, err
}

// ListTransactions returns the latest balance changes, newest first.
func (s *AccountService) ListTransactions(ctx context.Context, accountID uuid.UUID, limit int32) ([]domain.Transaction, error) {
	rows, err := s.queries.ListTransactions(ctx, accountID, limit)
	if err != nil {
		return nil, repository.Unavailable(fmt.Errorf("list transactions: %w", err))
	}
	return mapRows(rows, rowToTransaction), nil
}
