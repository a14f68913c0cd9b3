package entity

import (
	"time"

	"github.com/paulmach/orb"
)

// WasteType is a priced category of collection service.
type WasteType struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	PricePerKg  Decimal `json:"price_per_kg"`
}

// Center is a physical collection location.
type Center struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Latitude    Decimal   `json:"latitude"`
	Longitude   Decimal   `json:"longitude"`
	ContactInfo string    `json:"contact_info,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

// Point returns the center location. orb points are (lng, lat).
func (c *Center) Point() orb.Point {
	return orb.Point{c.Longitude.Float64(), c.Latitude.Float64()}
}

// NearestCenter is the answer of the nearest-center lookup.
type NearestCenter struct {
	Center     Center  `json:"center"`
	DistanceKm float64 `json:"distance_km"`
}

// FindWasteType returns the waste type with the given id.
func FindWasteType(types []WasteType, id int64) (*WasteType, bool) {
	for i := range types {
		if types[i].ID == id {
			return &types[i], true
		}
	}

	return nil, false
}

// FindCenter returns the center with the given id.
func FindCenter(centers []Center, id int64) (*Center, bool) {
	for i := range centers {
		if centers[i].ID == id {
			return &centers[i], true
		}
	}

	return nil, false
}
