package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrForbidden          = errors.New("operation not permitted for this role")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("concurrent update detected")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrInvalidAmount      = errors.New("invalid amount")

	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)
	ErrShopNotFound    = fmt.Errorf("shop %w", ErrNotFound)
	ErrOfferNotFound   = fmt.Errorf("offer %w", ErrNotFound)

	ErrNotShopOwner    = errors.New("shop belongs to another admin")
	ErrInvalidShop     = errors.New("invalid shop")
	ErrInvalidOffer    = errors.New("invalid offer")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrEmptyReview     = errors.New("review text is empty")
	ErrAlreadyReviewed = errors.New("shop already reviewed by this user")
	ErrNoPreferredShop = errors.New("no preferred shop selected")
	ErrInvalidEmail    = errors.New("invalid email")
	ErrEmailTaken      = errors.New("email already used by another account")
	ErrRouteNotFound   = errors.New("no route between points")
	ErrNoPicture       = errors.New("no picture found at url")
)
