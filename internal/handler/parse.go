package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/set-night/cafeloyalty/internal/service"
	"github.com/shopspring/decimal"
)

var errUsage = errors.New("usage")

// commandArgs strips the leading /command (and any @botname) from text.
func commandArgs(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return text
	}
	if i := strings.IndexAny(text, " \n"); i >= 0 {
		return strings.TrimSpace(text[i+1:])
	}
	return ""
}

func splitPipe(args string) []string {
	parts := strings.Split(args, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// parseAddShop reads "name | address | lat | lon [| picture url]".
func parseAddShop(args string) (service.CreateShopInput, error) {
	parts := splitPipe(args)
	if len(parts) < 4 || len(parts) > 5 {
		return service.CreateShopInput{}, errUsage
	}
	lat, err := decimal.NewFromString(parts[2])
	if err != nil {
		return service.CreateShopInput{}, fmt.Errorf("latitude %q: %w", parts[2], errUsage)
	}
	lon, err := decimal.NewFromString(parts[3])
	if err != nil {
		return service.CreateShopInput{}, fmt.Errorf("longitude %q: %w", parts[3], errUsage)
	}
	in := service.CreateShopInput{
		Name:      parts[0],
		Address:   parts[1],
		Latitude:  lat.Round(6),
		Longitude: lon.Round(6),
	}
	if len(parts) == 5 {
		in.PictureURL = parts[4]
	}
	return in, nil
}

type addOfferArgs struct {
	ShopNumber  int
	Name        string
	Description string
	PointsCost  int64
}

// parseAddOffer reads "shop# | name | description | points". The shop
// number refers to the /myshops listing.
func parseAddOffer(args string) (addOfferArgs, error) {
	parts := splitPipe(args)
	if len(parts) != 4 {
		return addOfferArgs{}, errUsage
	}
	n, err := strconv.Atoi(strings.TrimPrefix(parts[0], "#"))
	if err != nil || n < 1 {
		return addOfferArgs{}, fmt.Errorf("shop number %q: %w", parts[0], errUsage)
	}
	cost, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return addOfferArgs{}, fmt.Errorf("points %q: %w", parts[3], errUsage)
	}
	return addOfferArgs{ShopNumber: n, Name: parts[1], Description: parts[2], PointsCost: cost}, nil
}

// parseAward reads "<email|@username> <points>".
func parseAward(args string) (string, int64, error) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return "", 0, errUsage
	}
	points, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("points %q: %w", fields[1], errUsage)
	}
	return fields[0], points, nil
}

// parseReview reads "<rating> <text>".
func parseReview(args string) (int, string, error) {
	rating, text, ok := strings.Cut(strings.TrimSpace(args), " ")
	if !ok {
		return 0, "", errUsage
	}
	n, err := strconv.Atoi(rating)
	if err != nil {
		return 0, "", fmt.Errorf("rating %q: %w", rating, errUsage)
	}
	return n, strings.TrimSpace(text), nil
}

func parseCallbackID(data, prefix string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimPrefix(data, prefix))
}
