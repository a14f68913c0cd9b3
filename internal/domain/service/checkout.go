package service

import (
	"context"

	"pickup/internal/domain/entity"

	"github.com/pkg/errors"
)

// ErrCheckoutDismissed is returned when the user closes the widget.
var ErrCheckoutDismissed = errors.New("checkout dismissed")

// CheckoutRequest is everything the hosted widget needs to open.
type CheckoutRequest struct {
	BookingID      int64
	KeyID          string
	OrderID        string
	AmountSubunits int64
	Currency       string
	MerchantName   string
	Description    string
	ThemeColor     string
	PrefillName    string
	PrefillEmail   string
}

// CheckoutFailure is a provider-reported payment failure.
type CheckoutFailure struct {
	Code        string
	Description string
}

// Error implements the error interface
func (f *CheckoutFailure) Error() string {
	if f.Description == "" {
		return "payment failed"
	}

	return "payment failed: " + f.Description
}

// CheckoutWidget opens the third-party checkout and blocks until the
// widget reports completion, failure or dismissal, or ctx ends.
type CheckoutWidget interface {
	Open(ctx context.Context, req *CheckoutRequest) (*entity.CheckoutProof, error)
}
