package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Shop struct {
	ID         uuid.UUID
	Name       string
	Address    string
	Latitude   decimal.Decimal
	Longitude  decimal.Decimal
	PictureURL string
	OwnerID    uuid.UUID
	CreatedAt  time.Time
}

func (s *Shop) Location() Coordinate {
	return Coordinate{Latitude: s.Latitude, Longitude: s.Longitude}
}

type Coordinate struct {
	Latitude  decimal.Decimal
	Longitude decimal.Decimal
}

var (
	maxLatitude  = decimal.NewFromInt(90)
	maxLongitude = decimal.NewFromInt(180)
)

func (c Coordinate) Valid() bool {
	return c.Latitude.Abs().LessThanOrEqual(maxLatitude) &&
		c.Longitude.Abs().LessThanOrEqual(maxLongitude)
}

// Route is the opaque answer of the routing provider.
type Route struct {
	Polyline        string
	DistanceMeters  float64
	DurationSeconds float64
}

// Rating aggregates a shop's reviews.
type Rating struct {
	Average decimal.Decimal
	Count   int64
}
