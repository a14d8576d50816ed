package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/set-night/cafeloyalty/internal/config"
	"github.com/set-night/cafeloyalty/internal/domain"
	"github.com/tidwall/gjson"
)

// RoutingService asks an OSRM-compatible server for a route between two
// points. Path finding itself happens on the server.
type RoutingService struct {
	baseURL    string
	profile    string
	maxBody    int64
	httpClient *http.Client
}

func NewRoutingService(cfg *config.Config) *RoutingService {
	return &RoutingService{
		baseURL:    strings.TrimRight(cfg.RoutingURL, "/"),
		profile:    cfg.RoutingProfile,
		maxBody:    config.RoutingMaxBody,
		httpClient: &http.Client{Timeout: config.RoutingTimeout},
	}
}

func (s *RoutingService) Route(ctx context.Context, from, to domain.Coordinate) (domain.Route, error) {
	if !from.Valid() || !to.Valid() {
		return domain.Route{}, fmt.Errorf("%w: coordinates out of range", domain.ErrRouteNotFound)
	}

	// OSRM takes lon,lat pairs.
	coords := fmt.Sprintf("%s,%s;%s,%s",
		from.Longitude.String(), from.Latitude.String(),
		to.Longitude.String(), to.Latitude.String())
	endpoint := fmt.Sprintf("%s/route/v1/%s/%s?overview=full&geometries=polyline",
		s.baseURL, url.PathEscape(s.profile), coords)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Route{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.Route{}, fmt.Errorf("%w: routing request: %w", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBody+1))
	if err != nil {
		return domain.Route{}, fmt.Errorf("read response: %w", err)
	}
	if int64(len(body)) > s.maxBody {
		return domain.Route{}, fmt.Errorf("routing response exceeds %d bytes", s.maxBody)
	}

	return parseRoute(resp.StatusCode, body)
}

func parseRoute(status int, body []byte) (domain.Route, error) {
	if !gjson.ValidBytes(body) {
		if status >= http.StatusInternalServerError {
			return domain.Route{}, fmt.Errorf("%w: routing status %d", domain.ErrBackendUnavailable, status)
		}
		return domain.Route{}, fmt.Errorf("routing status %d: invalid body", status)
	}

	code := gjson.GetBytes(body, "code").String()
	switch code {
	case "Ok":
	case "NoRoute", "NoSegment":
		return domain.Route{}, domain.ErrRouteNotFound
	default:
		if status >= http.StatusInternalServerError {
			return domain.Route{}, fmt.Errorf("%w: routing status %d", domain.ErrBackendUnavailable, status)
		}
		return domain.Route{}, fmt.Errorf("routing error %q: %s", code, gjson.GetBytes(body, "message").String())
	}

	route := gjson.GetBytes(body, "routes.0")
	if !route.Exists() {
		return domain.Route{}, domain.ErrRouteNotFound
	}
	return domain.Route{
		Polyline:        route.Get("geometry").String(),
		DistanceMeters:  route.Get("distance").Float(),
		DurationSeconds: route.Get("duration").Float(),
	}, nil
}
