package usecase

import (
	"context"
)

// PaymentUsecase hands a booking to the checkout widget and verifies the
// result with the server. Nothing is marked paid locally.
type PaymentUsecase interface {
	Pay(ctx context.Context, bookingID int64) (*PaymentResult, error)
}

// --- Output DTOs ---

// PaymentResult is returned only after the server verified the payment.
type PaymentResult struct {
	BookingID int64   `json:"booking_id"`
	OrderID   string  `json:"order_id"`
	PaymentID string  `json:"payment_id"`
	Amount    float64 `json:"amount"`
	Paid      bool    `json:"paid"`
}
