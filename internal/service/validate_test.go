package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/set-night/cafeloyalty/internal/config"
	"github.com/set-night/cafeloyalty/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "Ann@Example.com", want: "ann@example.com"},
		{in: "  bob@cafe.org ", want: "bob@cafe.org"},
		{in: "no-at-sign", wantErr: true},
		{in: "a@localhost", wantErr: true},
		{in: "Ann <ann@example.com>", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeEmail(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidEmail)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateReview(t *testing.T) {
	_, err := ValidateReview(0, "ok")
	assert.ErrorIs(t, err, domain.ErrInvalidRating)
	_, err = ValidateReview(6, "ok")
	assert.ErrorIs(t, err, domain.ErrInvalidRating)
	_, err = ValidateReview(3, "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyReview)

	text, err := ValidateReview(5, "  great flat white ")
	require.NoError(t, err)
	assert.Equal(t, "great flat white", text)

	text, err = ValidateReview(1, strings.Repeat("é", config.MaxReviewLength+10))
	require.NoError(t, err)
	assert.Equal(t, config.MaxReviewLength, utf8.RuneCountInString(text))
}

func TestCreateShopInputValidate(t *testing.T) {
	valid := CreateShopInput{
		Name:      "Bean There",
		Address:   "1 Main St",
		Latitude:  decimal.RequireFromString("48.8566"),
		Longitude: decimal.RequireFromString("2.3522"),
	}
	assert.NoError(t, valid.Validate())

	noName := valid
	noName.Name = " "
	assert.ErrorIs(t, noName.Validate(), domain.ErrInvalidShop)

	badLat := valid
	badLat.Latitude = decimal.NewFromInt(-91)
	assert.ErrorIs(t, badLat.Validate(), domain.ErrInvalidShop)

	badLon := valid
	badLon.Longitude = decimal.RequireFromString("180.5")
	assert.ErrorIs(t, badLon.Validate(), domain.ErrInvalidShop)
}

func TestCreateOfferInputValidate(t *testing.T) {
	in := CreateOfferInput{ShopID: uuid.New(), Name: "Free espresso", PointsCost: 50}
	assert.NoError(t, in.Validate())

	in.PointsCost = 0
	assert.ErrorIs(t, in.Validate(), domain.ErrInvalidOffer)

	in.PointsCost = 10
	in.Name = ""
	assert.ErrorIs(t, in.Validate(), domain.ErrInvalidOffer)
}
