// Package geo finds the user's approximate position and measures distances
// to collection centers.
package geo

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"pickup/config"
	deliverycontext "pickup/internal/delivery/context"
	"pickup/internal/domain/service"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// ErrDisabled is returned by Locate when geolocation is turned off.
var ErrDisabled = errors.New("geolocation disabled")

// ipLocator asks an IP geolocation endpoint for the caller's position.
type ipLocator struct {
	enabled    bool
	endpoint   string
	timeout    time.Duration
	fallback   orb.Point
	httpClient *http.Client
	logger     *slog.Logger
}

// Params holds dependencies for the locator, injected by Fx
type Params struct {
	fx.In

	Config     *config.Config
	Logger     *slog.Logger
	HTTPClient *http.Client `optional:"true"`
}

// NewLocator creates the locator from the geolocation config section.
func NewLocator(params Params) service.Geolocator {
	cfg := params.Config.Geolocation
	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &ipLocator{
		enabled:    cfg.Enabled && cfg.Endpoint != "",
		endpoint:   cfg.Endpoint,
		timeout:    cfg.Timeout,
		fallback:   orb.Point{cfg.DefaultLongitude, cfg.DefaultLatitude},
		httpClient: httpClient,
		logger:     params.Logger,
	}
}

type ipLookup struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
}

func (l ipLookup) point() (orb.Point, bool) {
	switch {
	case l.Latitude != nil && l.Longitude != nil:
		return orb.Point{*l.Longitude, *l.Latitude}, true
	case l.Lat != nil && l.Lon != nil:
		return orb.Point{*l.Lon, *l.Lat}, true
	default:
		return orb.Point{}, false
	}
}

// Locate returns the position reported for the caller's IP. It gives up
// after the configured timeout.
func (g *ipLocator) Locate(ctx context.Context) (orb.Point, error) {
	if !g.enabled {
		return orb.Point{}, ErrDisabled
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint, nil)
	if err != nil {
		return orb.Point{}, errors.WithStack(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return orb.Point{}, errors.Wrap(err, "geolocation request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return orb.Point{}, errors.Errorf("geolocation endpoint returned status %d", resp.StatusCode)
	}

	var lookup ipLookup
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&lookup); err != nil {
		return orb.Point{}, errors.Wrap(err, "decode geolocation response")
	}
	p, ok := lookup.point()
	if !ok || !valid(p) {
		return orb.Point{}, errors.New("geolocation response has no coordinates")
	}

	deliverycontext.GetLoggerOrDefault(ctx, g.logger).Debug("Located user",
		slog.Float64("lat", p.Lat()),
		slog.Float64("lng", p.Lon()),
	)

	return p, nil
}

// Fallback is the configured default coordinate.
func (g *ipLocator) Fallback() orb.Point {
	return g.fallback
}

func valid(p orb.Point) bool {
	return p.Lat() >= -90 && p.Lat() <= 90 && p.Lon() >= -180 && p.Lon() <= 180
}

// Module provides the geolocation FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewLocator),
)
