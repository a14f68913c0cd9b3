package service

import (
	"context"

	"github.com/paulmach/orb"
)

// Geolocator finds the user's approximate position. Implementations are
// best effort and bounded in time.
type Geolocator interface {
	Locate(ctx context.Context) (orb.Point, error)

	// Fallback is the coordinate used for nearest-center lookups when
	// Locate fails.
	Fallback() orb.Point
}
