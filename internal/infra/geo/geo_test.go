package geo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"pickup/config"
	"pickup/internal/domain/entity"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocator(endpoint string, timeout time.Duration) *ipLocator {
	cfg := &config.Config{Geolocation: &config.GeolocationConfig{
		Enabled:          true,
		Endpoint:         endpoint,
		Timeout:          timeout,
		DefaultLatitude:  28.6139,
		DefaultLongitude: 77.2090,
	}}

	return NewLocator(Params{Config: cfg, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}).(*ipLocator)
}

func TestLocate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ip":"1.2.3.4","latitude":19.076,"longitude":72.8777}`))
	}))
	defer srv.Close()

	p, err := newLocator(srv.URL, time.Second).Locate(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 19.076, p.Lat(), 1e-9)
	assert.InDelta(t, 72.8777, p.Lon(), 1e-9)
}

func TestLocate_AlternateFieldNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","lat":12.97,"lon":77.59}`))
	}))
	defer srv.Close()

	p, err := newLocator(srv.URL, time.Second).Locate(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 12.97, p.Lat(), 1e-9)
}

func TestLocate_TimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := newLocator(srv.URL, 50*time.Millisecond).Locate(context.Background())

	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestLocate_NoCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":true,"reason":"RateLimited"}`))
	}))
	defer srv.Close()

	_, err := newLocator(srv.URL, time.Second).Locate(context.Background())

	assert.Error(t, err)
}

func TestLocate_Disabled(t *testing.T) {
	locator := newLocator("", time.Second)

	_, err := locator.Locate(context.Background())

	assert.True(t, errors.Is(err, ErrDisabled))
	assert.InDelta(t, 28.6139, locator.Fallback().Lat(), 1e-9)
	assert.InDelta(t, 77.2090, locator.Fallback().Lon(), 1e-9)
}

func TestRankCenters(t *testing.T) {
	delhi := orb.Point{77.2090, 28.6139}
	centers := []entity.Center{
		{ID: 1, Name: "Mumbai", Latitude: 19.0760, Longitude: 72.8777},
		{ID: 2, Name: "Noida", Latitude: 28.5355, Longitude: 77.3910},
		{ID: 3, Name: "Connaught Place", Latitude: 28.6315, Longitude: 77.2167},
	}

	ranked := RankCenters(centers, delhi)

	require.Len(t, ranked, 3)
	assert.Equal(t, int64(3), ranked[0].Center.ID)
	assert.Equal(t, int64(2), ranked[1].Center.ID)
	assert.Equal(t, int64(1), ranked[2].Center.ID)
	assert.InDelta(t, 1150, ranked[2].DistanceKm, 30)
}

func TestStaticMapURL(t *testing.T) {
	centers := []entity.Center{
		{ID: 1, Latitude: 28.5, Longitude: 77.1},
		{ID: 2, Latitude: 28.6, Longitude: 77.2},
	}
	user := orb.Point{77.3, 28.7}

	assert.Empty(t, StaticMapURL("", centers, 1, &user))

	raw := StaticMapURL("KEY", centers, 2, &user)
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "KEY", q.Get("key"))
	assert.Equal(t, []string{
		"color:green|label:S|28.600000,77.200000",
		"color:red|28.500000,77.100000",
		"color:blue|label:U|28.700000,77.300000",
	}, q["markers"])
}
