package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimal_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "string", input: `"12.50"`, want: 12.5},
		{name: "number", input: `5`, want: 5},
		{name: "null", input: `null`, want: 0},
		{name: "empty string", input: `""`, want: 0},
		{name: "garbage", input: `"abc"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Decimal
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, d.Float64(), 1e-9)
		})
	}
}

func TestFormatRupees(t *testing.T) {
	assert.Equal(t, "₹50.00", FormatRupees(50))
	assert.Equal(t, "₹0.10", FormatRupees(0.1))
	assert.Equal(t, "₹50.00", FormatRupees(49.999))
}

func TestWasteType_DecodesServerPayload(t *testing.T) {
	payload := `[{"id":2,"name":"Plastic","description":"bottles","price_per_kg":"5.00"}]`

	var types []WasteType
	require.NoError(t, json.Unmarshal([]byte(payload), &types))

	wt, ok := FindWasteType(types, 2)
	require.True(t, ok)
	assert.Equal(t, "Plastic", wt.Name)
	assert.InDelta(t, 5.0, wt.PricePerKg.Float64(), 1e-9)

	_, ok = FindWasteType(types, 3)
	assert.False(t, ok)
}

func TestPaymentOrder_AmountSubunits(t *testing.T) {
	order := PaymentOrder{Amount: 50.1}

	assert.Equal(t, int64(5010), order.AmountSubunits())
}

func TestCenter_Point(t *testing.T) {
	c := Center{Latitude: 28.6, Longitude: 77.2}

	p := c.Point()

	assert.InDelta(t, 77.2, p.Lon(), 1e-9)
	assert.InDelta(t, 28.6, p.Lat(), 1e-9)
}
