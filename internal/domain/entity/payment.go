package entity

import (
	"math"
	"time"
)

// PaymentRecord is the server's payment row for a booking.
type PaymentRecord struct {
	ID                int64      `json:"id"`
	RazorpayOrderID   string     `json:"razorpay_order_id"`
	RazorpayPaymentID string     `json:"razorpay_payment_id,omitempty"`
	Amount            Decimal    `json:"amount"`
	Status            string     `json:"status"`
	CreatedAt         time.Time  `json:"created_at,omitzero"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`
}

// PaymentOrder is returned when a payment order is created for a booking.
type PaymentOrder struct {
	Payment *PaymentRecord `json:"payment,omitempty"`
	OrderID string         `json:"razorpay_order_id"`
	Amount  float64        `json:"amount"`
}

// AmountSubunits converts the order amount to the provider's minor unit (paise).
func (o *PaymentOrder) AmountSubunits() int64 {
	return int64(math.Round(o.Amount * 100))
}

// CheckoutProof is the provider-issued evidence of a completed checkout.
// It is forwarded verbatim to the verification endpoint.
type CheckoutProof struct {
	OrderID   string `json:"razorpay_order_id" form:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id" form:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature" form:"razorpay_signature"`
}

// PaymentVerification is the verification endpoint's answer.
type PaymentVerification struct {
	Success bool           `json:"success"`
	Payment *PaymentRecord `json:"payment,omitempty"`
}
