package entity

import (
	"strings"
	"time"
)

// BookingStatus is the server-side lifecycle of a pickup.
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingAccepted   BookingStatus = "accepted"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

// IsOpen reports whether the pickup has not finished yet.
func (s BookingStatus) IsOpen() bool {
	switch s {
	case BookingPending, BookingAccepted, BookingInProgress:
		return true
	default:
		return false
	}
}

// IsKnown reports whether the status is one the client understands.
func (s BookingStatus) IsKnown() bool {
	switch s {
	case BookingPending, BookingAccepted, BookingInProgress, BookingCompleted, BookingCancelled:
		return true
	default:
		return false
	}
}

// Label renders the status for display, e.g. "IN PROGRESS".
func (s BookingStatus) Label() string {
	if !s.IsKnown() {
		if s == "" {
			return "OTHER"
		}

		return "OTHER (" + strings.ToUpper(string(s)) + ")"
	}

	return strings.ToUpper(strings.ReplaceAll(string(s), "_", " "))
}

// PaymentStatus is the payment state of a booking.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Label renders the payment status for display.
func (s PaymentStatus) Label() string {
	if s == "" {
		return strings.ToUpper(string(PaymentPending))
	}

	return strings.ToUpper(string(s))
}

// Booking is a server-confirmed pickup request. The client only reads it;
// status fields are mutated by the server alone.
type Booking struct {
	ID             int64         `json:"id"`
	User           *User         `json:"user,omitempty"`
	WasteType      *WasteType    `json:"waste_type,omitempty"`
	QuantityKg     Decimal       `json:"quantity_kg"`
	PickupDate     string        `json:"pickup_date"`
	PickupTime     string        `json:"pickup_time"`
	Address        string        `json:"address"`
	SelectedCenter *Center       `json:"selected_center,omitempty"`
	WasteImage     string        `json:"waste_image,omitempty"`
	Status         BookingStatus `json:"status"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	TotalPrice     Decimal       `json:"total_price"`
	CreatedAt      time.Time     `json:"created_at,omitzero"`
	UpdatedAt      time.Time     `json:"updated_at,omitzero"`
}

// IsPaid reports whether the server has recorded the payment.
func (b *Booking) IsPaid() bool {
	return b.PaymentStatus == PaymentPaid
}

// WasteTypeName returns the waste type name or an empty string.
func (b *Booking) WasteTypeName() string {
	if b.WasteType == nil {
		return ""
	}

	return b.WasteType.Name
}

// CenterName returns the chosen center name, or "Not selected".
func (b *Booking) CenterName() string {
	if b.SelectedCenter == nil {
		return "Not selected"
	}

	return b.SelectedCenter.Name
}

// BookingStats summarises a booking history.
type BookingStats struct {
	Total      int
	Open       int
	Completed  int
	TotalSpent float64
}

// SummariseBookings computes dashboard statistics. Only paid bookings count
// towards TotalSpent.
func SummariseBookings(bookings []Booking) BookingStats {
	stats := BookingStats{Total: len(bookings)}
	for i := range bookings {
		b := &bookings[i]
		switch {
		case b.Status.IsOpen():
			stats.Open++
		case b.Status == BookingCompleted:
			stats.Completed++
		}
		if b.IsPaid() {
			stats.TotalSpent += b.TotalPrice.Float64()
		}
	}
	stats.TotalSpent = Round2(stats.TotalSpent)

	return stats
}
