package usecase

import (
	"context"

	"pickup/internal/domain/entity"

	"github.com/paulmach/orb"
)

// CatalogUsecase reads the reference data: waste types and centers.
type CatalogUsecase interface {
	ListWasteTypes(ctx context.Context) ([]entity.WasteType, error)
	ListCenters(ctx context.Context) ([]entity.Center, error)

	// NearestCenter asks the server for the center closest to p.
	NearestCenter(ctx context.Context, p orb.Point) (*entity.NearestCenter, error)

	// RankCenters lists centers by client-side distance from p.
	RankCenters(ctx context.Context, p orb.Point) ([]entity.NearestCenter, error)

	// CenterMap returns a static map URL, or "" when no maps key is set.
	CenterMap(centers []entity.Center, selectedID int64, user *orb.Point) string
}
