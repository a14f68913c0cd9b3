package geo

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"pickup/internal/domain/entity"

	"github.com/paulmach/orb"
)

const staticMapEndpoint = "https://maps.googleapis.com/maps/api/staticmap"

// StaticMapURL builds a static map image URL showing the centers, the
// selected one in green and the user in blue. It returns "" without a key.
func StaticMapURL(apiKey string, centers []entity.Center, selectedID int64, user *orb.Point) string {
	if apiKey == "" || (len(centers) == 0 && user == nil) {
		return ""
	}

	q := url.Values{}
	q.Set("size", "640x400")
	q.Set("key", apiKey)

	var others []string
	for i := range centers {
		c := &centers[i]
		if c.ID == selectedID {
			q.Add("markers", "color:green|label:S|"+latLng(c.Point()))

			continue
		}
		others = append(others, latLng(c.Point()))
	}
	if len(others) > 0 {
		q.Add("markers", "color:red|"+strings.Join(others, "|"))
	}
	if user != nil {
		q.Add("markers", "color:blue|label:U|"+latLng(*user))
	}

	return staticMapEndpoint + "?" + q.Encode()
}

func latLng(p orb.Point) string {
	return fmt.Sprintf("%s,%s",
		strconv.FormatFloat(p.Lat(), 'f', 6, 64),
		strconv.FormatFloat(p.Lon(), 'f', 6, 64),
	)
}
