package usecase

import (
	"context"

	"pickup/internal/domain/entity"
	"pickup/internal/domain/wizard"
)

// BookingUsecase reads the caller's bookings and starts new ones.
type BookingUsecase interface {
	History(ctx context.Context) ([]entity.Booking, error)
	Get(ctx context.Context, id int64) (*entity.Booking, error)
	Dashboard(ctx context.Context) (*Dashboard, error)

	// StartWizard opens a booking wizard, optionally preset with a waste
	// type. The caller must Close it.
	StartWizard(ctx context.Context, presetWasteTypeID int64) (BookingWizard, error)
}

// BookingWizard drives one booking wizard mount. Center data requested by a
// mount is dropped if it arrives after Back or Close.
type BookingWizard interface {
	State() wizard.State
	WasteTypes() []entity.WasteType

	// Edit changes step-1 fields; it fails outside CollectingDetails.
	Edit(fn func(*wizard.Details)) error
	Estimate() (amount float64, ok bool)

	// Advance validates the details, moves to center selection and starts
	// loading centers and the nearest one in the background.
	Advance(ctx context.Context) (wizard.SelectingCenter, error)

	// AwaitCenters waits for the loading started by Advance.
	AwaitCenters(ctx context.Context) (*CenterSelection, error)

	Choose(centerID int64) error
	Back() error

	// Submit creates the booking and returns its id. On success the wizard
	// is closed; on failure it stays in SelectingCenter.
	Submit(ctx context.Context) (int64, error)

	Close()
}

// --- Output DTOs ---

// CenterSelection is what step 2 shows.
type CenterSelection struct {
	State   wizard.SelectingCenter
	Centers []entity.Center

	// LoadErr is set when the center list could not be fetched; the list
	// is then empty and the user may retry by going back and forward.
	LoadErr error
}

// Dashboard summarises the caller's bookings.
type Dashboard struct {
	User   *entity.User        `json:"user"`
	Stats  entity.BookingStats `json:"stats"`
	Recent []entity.Booking    `json:"recent"`
}
