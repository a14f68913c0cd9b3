// Package qrcode renders checkout links and booking receipts as QR codes.
package qrcode

import (
	"encoding/json"

	"pickup/config"
	"pickup/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
)

const receiptType = "booking_receipt"

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// ReceiptData is the payload encoded in a booking receipt QR code
type ReceiptData struct {
	BookingID int64  `json:"booking_id"`
	Type      string `json:"type"`
}

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(size int, errorCorrectionLevel string) service.QRCodeService {
	var level qrcode.RecoveryLevel
	switch errorCorrectionLevel {
	case "L":
		level = qrcode.Low
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}
	if size <= 0 {
		size = 256
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: level,
	}
}

// NewFromConfig creates the service from the qrcode config section.
func NewFromConfig(cfg *config.Config) service.QRCodeService {
	return NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel)
}

// TerminalQR renders content with half-block characters so it can be
// scanned straight from a terminal.
func (s *qrcodeService) TerminalQR(content string) (string, error) {
	qr, err := qrcode.New(content, s.errorCorrectionLevel)
	if err != nil {
		return "", errors.Wrap(err, "create QR code")
	}

	return qr.ToSmallString(false), nil
}

// GenerateReceiptQR generates a PNG QR code identifying a booking
func (s *qrcodeService) GenerateReceiptQR(bookingID int64) ([]byte, error) {
	if bookingID <= 0 {
		return nil, errors.Errorf("invalid booking id %d", bookingID)
	}

	jsonData, err := json.Marshal(ReceiptData{BookingID: bookingID, Type: receiptType})
	if err != nil {
		return nil, errors.Wrap(err, "marshal receipt QR data")
	}

	pngBytes, err := qrcode.Encode(string(jsonData), s.errorCorrectionLevel, s.size)
	if err != nil {
		return nil, errors.Wrap(err, "generate receipt PNG")
	}

	return pngBytes, nil
}

// ParseReceiptQR parses receipt QR data and returns the booking ID
func (s *qrcodeService) ParseReceiptQR(qrData string) (int64, error) {
	var data ReceiptData
	if err := json.Unmarshal([]byte(qrData), &data); err != nil {
		return 0, errors.Wrap(err, "unmarshal receipt QR data")
	}
	if data.Type != receiptType {
		return 0, errors.Errorf("invalid QR code type: %s", data.Type)
	}
	if data.BookingID <= 0 {
		return 0, errors.Errorf("invalid booking id %d", data.BookingID)
	}

	return data.BookingID, nil
}
