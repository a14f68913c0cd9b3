package impl

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"pickup/internal/domain/entity"
	domainerrors "pickup/internal/domain/errors"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const centersJSON = `[
	{"id":1,"name":"North Yard","address":"1 North St","latitude":"28.7041","longitude":"77.1025"},
	{"id":2,"name":"Central Depot","address":"2 Main St","latitude":"28.6139","longitude":"77.2090"}
]`

func TestCatalogService_ListWasteTypes_Public(t *testing.T) {
	s := createTestServices(t, "")
	s.api.Reply(http.MethodGet, pathWasteTypes, http.StatusOK,
		`[{"id":1,"name":"Organic","description":"food","price_per_kg":"10.00"}]`)

	types, err := s.catalog.ListWasteTypes(context.Background())

	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "Organic", types[0].Name)
	assert.InDelta(t, 10.0, types[0].PricePerKg.Float64(), 1e-9)
	assert.Empty(t, s.api.Auth(http.MethodGet, pathWasteTypes))
}

func TestCatalogService_ListCenters_RequiresLogin(t *testing.T) {
	s := createTestServices(t, "")

	_, err := s.catalog.ListCenters(context.Background())

	assert.True(t, errors.Is(err, domainerrors.ErrLoginRequired))
}

func TestCatalogService_NearestCenter(t *testing.T) {
	s := createTestServices(t, "T1").loggedIn(testUser)
	s.api.Reply(http.MethodPost, pathNearestCenter, http.StatusOK,
		`{"center":{"id":2,"name":"Central Depot","latitude":"28.6139","longitude":"77.2090"},"distance_km":1.25}`)

	nearest, err := s.catalog.NearestCenter(context.Background(), orb.Point{77.21, 28.62})

	require.NoError(t, err)
	assert.Equal(t, int64(2), nearest.Center.ID)
	assert.InDelta(t, 1.25, nearest.DistanceKm, 1e-9)

	var sent map[string]float64
	require.NoError(t, json.Unmarshal(s.api.Body(http.MethodPost, pathNearestCenter), &sent))
	assert.InDelta(t, 28.62, sent["latitude"], 1e-9)
	assert.InDelta(t, 77.21, sent["longitude"], 1e-9)
}

func TestCatalogService_NearestCenter_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "no centers", status: http.StatusNotFound, body: `{"error":"No centers found"}`, want: domainerrors.ErrNoCentersFound},
		{name: "missing coordinates", status: http.StatusBadRequest, body: `{"error":"Latitude and longitude required"}`, want: domainerrors.ErrValidationFailed},
		{name: "expired session", status: http.StatusUnauthorized, body: `{"detail":"expired"}`, want: domainerrors.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := createTestServices(t, "T1").loggedIn(testUser)
			s.api.Reply(http.MethodPost, pathNearestCenter, tt.status, tt.body)

			_, err := s.catalog.NearestCenter(context.Background(), orb.Point{77.2, 28.6})

			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestCatalogService_RankCenters(t *testing.T) {
	s := createTestServices(t, "T1").loggedIn(testUser)
	s.api.Reply(http.MethodGet, pathCenters, http.StatusOK, centersJSON)

	ranked, err := s.catalog.RankCenters(context.Background(), orb.Point{77.2090, 28.6139})

	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, int64(2), ranked[0].Center.ID)
	assert.InDelta(t, 0, ranked[0].DistanceKm, 1e-6)
	assert.Greater(t, ranked[1].DistanceKm, ranked[0].DistanceKm)
}

func TestCatalogService_RankCenters_Empty(t *testing.T) {
	s := createTestServices(t, "T1").loggedIn(testUser)
	s.api.Reply(http.MethodGet, pathCenters, http.StatusOK, `[]`)

	_, err := s.catalog.RankCenters(context.Background(), orb.Point{77.2, 28.6})

	assert.True(t, errors.Is(err, domainerrors.ErrNoCentersFound))
}

func TestCatalogService_CenterMap(t *testing.T) {
	s := createTestServices(t, "")
	assert.Empty(t, s.catalog.CenterMap(nil, 0, nil))

	s.catalog.mapsKey = "maps-key"
	centers := []entity.Center{{ID: 2, Latitude: 28.6139, Longitude: 77.2090}}
	url := s.catalog.CenterMap(centers, 2, nil)

	assert.True(t, strings.Contains(url, "key=maps-key"), url)
	assert.True(t, strings.Contains(url, "label%3AS"), url)
}
