package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/set-night/cafeloyalty/internal/config"
	"github.com/set-night/cafeloyalty/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coord(lat, lon string) domain.Coordinate {
	return domain.Coordinate{
		Latitude:  decimal.RequireFromString(lat),
		Longitude: decimal.RequireFromString(lon),
	}
}

func TestRoutingServiceRoute(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"Ok","routes":[{"geometry":"_p~iF~ps|U_ulLnnqC","distance":1520.5,"duration":312.2}]}`))
	}))
	defer srv.Close()

	svc := NewRoutingService(&config.Config{RoutingURL: srv.URL + "/", RoutingProfile: "foot"})
	route, err := svc.Route(context.Background(), coord("52.5", "13.4"), coord("52.51", "13.41"))
	require.NoError(t, err)

	assert.Equal(t, "/route/v1/foot/13.4,52.5;13.41,52.51", gotPath)
	assert.Contains(t, gotQuery, "geometries=polyline")
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC", route.Polyline)
	assert.InDelta(t, 1520.5, route.DistanceMeters, 1e-9)
	assert.InDelta(t, 312.2, route.DurationSeconds, 1e-9)
}

func TestRoutingServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"no route", http.StatusOK, `{"code":"NoRoute","routes":[]}`, domain.ErrRouteNotFound},
		{"ok without routes", http.StatusOK, `{"code":"Ok","routes":[]}`, domain.ErrRouteNotFound},
		{"server down", http.StatusBadGateway, `<html>bad gateway</html>`, domain.ErrBackendUnavailable},
		{"server error json", http.StatusInternalServerError, `{"code":"Error"}`, domain.ErrBackendUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			svc := NewRoutingService(&config.Config{RoutingURL: srv.URL, RoutingProfile: "driving"})
			_, err := svc.Route(context.Background(), coord("1", "2"), coord("3", "4"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestRoutingServiceRejectsInvalidCoordinates(t *testing.T) {
	svc := NewRoutingService(&config.Config{RoutingURL: "http://127.0.0.1:1", RoutingProfile: "driving"})
	_, err := svc.Route(context.Background(), coord("91", "0"), coord("0", "0"))
	assert.ErrorIs(t, err, domain.ErrRouteNotFound)
}

func TestRoutingServiceBoundsResponseBody(t *testing.T) {
	geometry := strings.Repeat("x", 512)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"Ok","routes":[{"geometry":"` + geometry + `","distance":1,"duration":1}]}`))
	}))
	defer srv.Close()

	svc := NewRoutingService(&config.Config{RoutingURL: srv.URL, RoutingProfile: "driving"})
	svc.maxBody = 128
	_, err := svc.Route(context.Background(), coord("1", "2"), coord("3", "4"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 128 bytes")

	svc.maxBody = 4096
	route, err := svc.Route(context.Background(), coord("1", "2"), coord("3", "4"))
	require.NoError(t, err)
	assert.Equal(t, geometry, route.Polyline)
}
