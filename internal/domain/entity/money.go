package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// Decimal is a server decimal field. The API renders decimals as strings
// ("12.50") but numbers are accepted too.
type Decimal float64

// UnmarshalJSON accepts a JSON number, a numeric string, or null.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = 0

		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.WithStack(err)
		}
		if s == "" {
			*d = 0

			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid decimal %q", s)
		}
		*d = Decimal(f)

		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return errors.WithStack(err)
	}
	*d = Decimal(f)

	return nil
}

// Float64 returns the value as float64.
func (d Decimal) Float64() float64 {
	return float64(d)
}

// String renders the value with two decimal places, the way the API does.
func (d Decimal) String() string {
	return strconv.FormatFloat(float64(d), 'f', 2, 64)
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatRupees renders an amount as shown to users, e.g. ₹50.00.
func FormatRupees(v float64) string {
	return fmt.Sprintf("₹%.2f", Round2(v))
}
