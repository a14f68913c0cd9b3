package impl

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"pickup/internal/domain/entity"
	domainerrors "pickup/internal/domain/errors"
	"pickup/internal/domain/service"
	"pickup/internal/domain/wizard"
	"pickup/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// recentBookings is how many bookings the dashboard lists.
const recentBookings = 5

// bookingService implements the BookingUsecase interface.
type bookingService struct {
	gateway     service.Gateway
	session     usecase.SessionUsecase
	catalog     usecase.CatalogUsecase
	geolocator  service.Geolocator
	attachments service.AttachmentSource
	logger      *slog.Logger
	now         func() time.Time
}

// BookingParams holds dependencies for BookingService, injected by Fx
type BookingParams struct {
	fx.In

	Gateway     service.Gateway
	Session     usecase.SessionUsecase
	Catalog     usecase.CatalogUsecase
	Geolocator  service.Geolocator
	Attachments service.AttachmentSource
	Logger      *slog.Logger
}

// NewBookingService is the constructor for bookingService.
func NewBookingService(params BookingParams) usecase.BookingUsecase {
	return &bookingService{
		gateway:     params.Gateway,
		session:     params.Session,
		catalog:     params.Catalog,
		geolocator:  params.Geolocator,
		attachments: params.Attachments,
		logger:      params.Logger,
		now:         time.Now,
	}
}

// History returns the caller's bookings, newest first, as the server orders them.
func (srv *bookingService) History(ctx context.Context) ([]entity.Booking, error) {
	if _, err := srv.session.RequireUser(); err != nil {
		return nil, err
	}

	var bookings []entity.Booking
	if err := call(ctx, srv.gateway, &service.Request{Method: http.MethodGet, Path: pathBookingHistory}, &bookings); err != nil {
		return nil, sessionError(ctx, srv.session, err, "booking history")
	}

	return bookings, nil
}

// Get returns one of the caller's bookings. Bookings of other users are
// reported as not found by the server.
func (srv *bookingService) Get(ctx context.Context, id int64) (*entity.Booking, error) {
	if _, err := srv.session.RequireUser(); err != nil {
		return nil, err
	}

	var booking entity.Booking
	if err := call(ctx, srv.gateway, &service.Request{Method: http.MethodGet, Path: bookingPath(id)}, &booking); err != nil {
		if apiErr, ok := service.AsAPIError(err); ok && apiErr.IsNotFound() {
			return nil, errors.Wrapf(domainerrors.ErrBookingNotFound, "booking %d", id)
		}

		return nil, sessionError(ctx, srv.session, err, "get booking")
	}

	return &booking, nil
}

// Dashboard combines the user, history statistics and the latest bookings.
func (srv *bookingService) Dashboard(ctx context.Context) (*usecase.Dashboard, error) {
	user, err := srv.session.RequireUser()
	if err != nil {
		return nil, err
	}

	bookings, err := srv.History(ctx)
	if err != nil {
		return nil, err
	}

	recent := bookings
	if len(recent) > recentBookings {
		recent = recent[:recentBookings]
	}

	return &usecase.Dashboard{
		User:   user,
		Stats:  entity.SummariseBookings(bookings),
		Recent: recent,
	}, nil
}

// StartWizard loads the waste types and mounts a new wizard.
func (srv *bookingService) StartWizard(ctx context.Context, presetWasteTypeID int64) (usecase.BookingWizard, error) {
	if _, err := srv.session.RequireUser(); err != nil {
		return nil, err
	}

	types, err := srv.catalog.ListWasteTypes(ctx)
	if err != nil {
		return nil, err
	}
	if presetWasteTypeID != 0 {
		if _, ok := entity.FindWasteType(types, presetWasteTypeID); !ok {
			srv.logger.Warn("Ignoring unknown preset waste type", slog.Int64("waste_type_id", presetWasteTypeID))
			presetWasteTypeID = 0
		}
	}

	return newBookingWizard(srv, types, wizard.New(presetWasteTypeID)), nil
}
