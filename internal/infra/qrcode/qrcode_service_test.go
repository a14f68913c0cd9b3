package qrcode

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQRCodeService(t *testing.T) {
	tests := []struct {
		name                 string
		size                 int
		errorCorrectionLevel string
	}{
		{"Low error correction", 256, "L"},
		{"Medium error correction", 256, "M"},
		{"High error correction", 256, "Q"},
		{"Highest error correction", 256, "H"},
		{"Default error correction", 256, "invalid"},
		{"Default size", 0, "M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewQRCodeService(tt.size, tt.errorCorrectionLevel)
			assert.NotNil(t, service)
		})
	}
}

func TestQRCodeService_TerminalQR(t *testing.T) {
	service := NewQRCodeService(256, "M")

	out, err := service.TerminalQR("http://127.0.0.1:8123/checkout/order_1")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Greater(t, len(lines), 10)
	assert.True(t, strings.ContainsAny(out, "█▀▄"))
}

func TestQRCodeService_GenerateReceiptQR(t *testing.T) {
	service := NewQRCodeService(256, "M")

	qrBytes, err := service.GenerateReceiptQR(42)
	require.NoError(t, err)
	require.Greater(t, len(qrBytes), 4)

	// PNG magic number
	assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, qrBytes[:4])
}

func TestQRCodeService_GenerateReceiptQR_InvalidID(t *testing.T) {
	service := NewQRCodeService(256, "M")

	_, err := service.GenerateReceiptQR(0)
	assert.Error(t, err)
}

func TestQRCodeService_ParseReceiptQR(t *testing.T) {
	service := NewQRCodeService(256, "M")

	jsonData, err := json.Marshal(ReceiptData{BookingID: 42, Type: "booking_receipt"})
	require.NoError(t, err)

	bookingID, err := service.ParseReceiptQR(string(jsonData))
	require.NoError(t, err)
	assert.Equal(t, int64(42), bookingID)
}

func TestQRCodeService_ParseReceiptQR_Errors(t *testing.T) {
	service := NewQRCodeService(256, "M")

	tests := []struct {
		name string
		data string
	}{
		{"Invalid JSON", "not json"},
		{"Wrong type", `{"booking_id":42,"type":"subscription"}`},
		{"Missing booking id", `{"type":"booking_receipt"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.ParseReceiptQR(tt.data)
			assert.Error(t, err)
		})
	}
}
