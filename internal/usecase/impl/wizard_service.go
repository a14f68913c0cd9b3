package impl

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	deliverycontext "pickup/internal/delivery/context"
	"pickup/internal/domain/entity"
	domainerrors "pickup/internal/domain/errors"
	"pickup/internal/domain/lifecycle"
	"pickup/internal/domain/service"
	"pickup/internal/domain/wizard"
	"pickup/internal/usecase"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var (
	errWrongStep    = errors.New("booking wizard is not at that step")
	errWizardClosed = errors.New("booking wizard is closed")
)

// bookingWizard implements the BookingWizard interface.
type bookingWizard struct {
	srv   *bookingService
	types []entity.WasteType

	// gen guards the center loading started by Advance.
	gen lifecycle.Generation

	mu      sync.Mutex
	state   wizard.State
	centers []entity.Center
	loadErr error
	loaded  chan struct{}
	closed  bool
}

func newBookingWizard(srv *bookingService, types []entity.WasteType, initial wizard.CollectingDetails) *bookingWizard {
	return &bookingWizard{
		srv:   srv,
		types: types,
		state: initial,
	}
}

// State returns the current step.
func (w *bookingWizard) State() wizard.State {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.state
}

// WasteTypes returns the waste types loaded when the wizard started.
func (w *bookingWizard) WasteTypes() []entity.WasteType {
	return w.types
}

// Edit applies fn to the step-1 form.
func (w *bookingWizard) Edit(fn func(*wizard.Details)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return errWizardClosed
	}
	collecting, ok := w.state.(wizard.CollectingDetails)
	if !ok {
		return errors.Wrap(errWrongStep, "edit details")
	}
	fn(&collecting.Details)
	w.state = collecting

	return nil
}

// Estimate is the display total for the current form.
func (w *bookingWizard) Estimate() (float64, bool) {
	return wizard.Estimate(w.State().Form(), w.types)
}

// Advance validates step 1 and starts loading the centers.
func (w *bookingWizard) Advance(ctx context.Context) (wizard.SelectingCenter, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return wizard.SelectingCenter{}, errWizardClosed
	}
	collecting, ok := w.state.(wizard.CollectingDetails)
	if !ok {
		return wizard.SelectingCenter{}, errors.Wrap(errWrongStep, "advance")
	}

	next, err := collecting.Advance(w.srv.now())
	if err != nil {
		return wizard.SelectingCenter{}, err
	}

	ticket := w.gen.Mount()
	loaded := make(chan struct{})
	w.state = next
	w.centers = nil
	w.loadErr = nil
	w.loaded = loaded

	go w.load(context.WithoutCancel(ctx), ticket, loaded)

	return next, nil
}

// load fetches the center list and, concurrently, the user's position and
// the nearest center. Results are dropped when ticket is no longer current.
func (w *bookingWizard) load(ctx context.Context, ticket lifecycle.Ticket, loaded chan struct{}) {
	defer close(loaded)

	logger := deliverycontext.GetLoggerOrDefault(ctx, w.srv.logger)

	var (
		centers []entity.Center
		located *orb.Point
		nearest *entity.NearestCenter
		g       errgroup.Group
	)

	g.Go(func() error {
		list, err := w.srv.catalog.ListCenters(ctx)
		if err != nil {
			return err
		}
		centers = list

		return nil
	})

	g.Go(func() error {
		query, err := w.srv.geolocator.Locate(ctx)
		if err != nil {
			logger.Debug("Geolocation unavailable, using default coordinate", slog.Any("error", err))
			query = w.srv.geolocator.Fallback()
		} else {
			located = &query
		}

		n, err := w.srv.catalog.NearestCenter(ctx, query)
		if err != nil {
			logger.Warn("Nearest center lookup failed", slog.Any("error", err))

			return nil
		}
		nearest = n

		return nil
	})

	loadErr := g.Wait()
	if loadErr != nil {
		logger.Error("Failed to load centers", slog.Any("error", loadErr))
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.gen.Valid(ticket) {
		logger.Debug("Dropping center results for a closed step")

		return
	}
	selecting, ok := w.state.(wizard.SelectingCenter)
	if !ok {
		return
	}
	if located != nil {
		selecting = selecting.Locate(*located)
	}
	if nearest != nil {
		selecting = selecting.ApplyNearest(*nearest)
	}
	w.state = selecting
	w.centers = centers
	w.loadErr = loadErr
}

// AwaitCenters blocks until the loading started by Advance finishes.
func (w *bookingWizard) AwaitCenters(ctx context.Context) (*usecase.CenterSelection, error) {
	w.mu.Lock()
	loaded := w.loaded
	_, selecting := w.state.(wizard.SelectingCenter)
	w.mu.Unlock()

	if !selecting || loaded == nil {
		return nil, errors.Wrap(errWrongStep, "await centers")
	}

	select {
	case <-loaded:
	case <-ctx.Done():
		return nil, errors.WithStack(ctx.Err())
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	state, ok := w.state.(wizard.SelectingCenter)
	if !ok || w.loaded != loaded {
		return nil, errors.Wrap(errWrongStep, "await centers")
	}

	return &usecase.CenterSelection{
		State:   state,
		Centers: append([]entity.Center(nil), w.centers...),
		LoadErr: w.loadErr,
	}, nil
}

// Choose overrides the preselected center. Once the list is loaded the id
// must be one of its centers.
func (w *bookingWizard) Choose(centerID int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return errWizardClosed
	}
	selecting, ok := w.state.(wizard.SelectingCenter)
	if !ok {
		return errors.Wrap(errWrongStep, "choose center")
	}
	if len(w.centers) > 0 {
		if _, found := entity.FindCenter(w.centers, centerID); !found {
			return domainerrors.NewValidationError(map[string][]string{
				"selected_center_id": {"Select a valid collection center."},
			})
		}
	}
	w.state = selecting.Choose(centerID)

	return nil
}

// Back returns to step 1. Loading still in flight is discarded.
func (w *bookingWizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return errWizardClosed
	}
	selecting, ok := w.state.(wizard.SelectingCenter)
	if !ok {
		return errors.Wrap(errWrongStep, "back")
	}
	w.gen.Unmount()
	w.state = selecting.Back()
	w.centers = nil
	w.loadErr = nil
	w.loaded = nil

	return nil
}

// Submit creates the booking from step 2.
func (w *bookingWizard) Submit(ctx context.Context) (int64, error) {
	logger := deliverycontext.GetLoggerOrDefault(ctx, w.srv.logger)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()

		return 0, errWizardClosed
	}
	selecting, ok := w.state.(wizard.SelectingCenter)
	w.mu.Unlock()
	if !ok {
		return 0, errors.Wrap(errWrongStep, "submit")
	}
	if err := selecting.Ready(); err != nil {
		return 0, err
	}

	form, err := w.bookingForm(ctx, selecting)
	if err != nil {
		return 0, err
	}

	var created entity.Booking
	err = call(ctx, w.srv.gateway, &service.Request{
		Method: http.MethodPost,
		Path:   pathBookingCreate,
		Form:   form,
	}, &created)
	if err != nil {
		if w.srv.session.HandleUnauthorized(ctx, err) {
			return 0, errors.Wrap(domainerrors.ErrUnauthorized.WithDetails(err.Error()), "create booking")
		}
		logger.Error("Failed to create booking", slog.Any("error", err))

		return 0, errors.Wrap(domainerrors.ErrBookingFailed.WithDetails(err.Error()), "create booking")
	}
	if created.ID == 0 {
		return 0, errors.Wrap(domainerrors.ErrBookingFailed.WithDetails("response has no booking id"), "create booking")
	}

	logger.Info("Booking created",
		slog.Int64("booking_id", created.ID),
		slog.Int64("center_id", selecting.CenterID),
	)
	w.Close()

	return created.ID, nil
}

func (w *bookingWizard) bookingForm(ctx context.Context, s wizard.SelectingCenter) (*service.MultipartForm, error) {
	d := s.Details

	form := &service.MultipartForm{}
	form.Add("waste_type_id", strconv.FormatInt(d.WasteTypeID, 10))
	form.Add("quantity_kg", strconv.FormatFloat(d.QuantityKg, 'f', -1, 64))
	form.Add("pickup_date", d.PickupDate)
	form.Add("pickup_time", d.PickupTime)
	form.Add("address", d.Address)
	form.Add("selected_center_id", strconv.FormatInt(s.CenterID, 10))

	if d.ImageLocation != "" {
		image, err := w.srv.attachments.Open(ctx, d.ImageLocation)
		if err != nil {
			return nil, err
		}
		form.AddFile(service.FormFile{
			Field:       "waste_image",
			FileName:    image.FileName,
			ContentType: image.ContentType,
			Content:     bytes.NewReader(image.Data),
		})
	}

	return form, nil
}

// Close tears the wizard down. It is safe to call more than once.
func (w *bookingWizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.closed = true
	w.gen.Unmount()
}
