package geo

import (
	"sort"

	"pickup/internal/domain/entity"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// DistanceKm is the great-circle distance between two points.
func DistanceKm(a, b orb.Point) float64 {
	return geo.DistanceHaversine(a, b) / 1000
}

// RankCenters orders centers by distance from p, closest first.
func RankCenters(centers []entity.Center, p orb.Point) []entity.NearestCenter {
	ranked := make([]entity.NearestCenter, 0, len(centers))
	for _, c := range centers {
		ranked = append(ranked, entity.NearestCenter{
			Center:     c,
			DistanceKm: entity.Round2(DistanceKm(p, c.Point())),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})

	return ranked
}
