package service

// QRCodeService defines the interface for QR code generation and parsing services
type QRCodeService interface {
	// TerminalQR renders content as a QR code made of block characters
	TerminalQR(content string) (string, error)

	// GenerateReceiptQR generates a PNG QR code identifying a booking
	GenerateReceiptQR(bookingID int64) ([]byte, error)

	// ParseReceiptQR parses receipt QR data and returns the booking ID
	ParseReceiptQR(qrData string) (int64, error)
}
