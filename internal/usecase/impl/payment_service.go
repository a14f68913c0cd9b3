package impl

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"pickup/config"
	deliverycontext "pickup/internal/delivery/context"
	"pickup/internal/domain/entity"
	domainerrors "pickup/internal/domain/errors"
	"pickup/internal/domain/service"
	"pickup/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Stages of the payment handoff, reported in PaymentError.
const (
	stageOrder    = "order"
	stageCheckout = "checkout"
	stageVerify   = "verify"
)

// paymentService implements the PaymentUsecase interface.
type paymentService struct {
	cfg      *config.PaymentConfig
	gateway  service.Gateway
	session  usecase.SessionUsecase
	bookings usecase.BookingUsecase
	widget   service.CheckoutWidget
	logger   *slog.Logger
}

// PaymentParams holds dependencies for PaymentService, injected by Fx
type PaymentParams struct {
	fx.In

	Config   *config.Config
	Gateway  service.Gateway
	Session  usecase.SessionUsecase
	Bookings usecase.BookingUsecase
	Widget   service.CheckoutWidget
	Logger   *slog.Logger
}

// NewPaymentService is the constructor for paymentService.
func NewPaymentService(params PaymentParams) usecase.PaymentUsecase {
	cfg := params.Config.Payment
	if cfg == nil {
		cfg = &config.PaymentConfig{}
	}

	return &paymentService{
		cfg:      cfg,
		gateway:  params.Gateway,
		session:  params.Session,
		bookings: params.Bookings,
		widget:   params.Widget,
		logger:   params.Logger,
	}
}

// Pay runs the handoff: create an order, open the checkout widget, then
// forward the widget's proof to the server for verification. Only a
// verified payment is reported as paid.
func (srv *paymentService) Pay(ctx context.Context, bookingID int64) (*usecase.PaymentResult, error) {
	logger := deliverycontext.GetLoggerOrDefault(ctx, srv.logger).With(slog.Int64("booking_id", bookingID))

	user, err := srv.session.RequireUser()
	if err != nil {
		return nil, err
	}

	booking, err := srv.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.IsPaid() {
		return nil, errors.Wrapf(domainerrors.ErrAlreadyPaid, "booking %d", bookingID)
	}
	if srv.cfg.KeyID == "" {
		logger.Error("Checkout key is not configured")

		return nil, errors.WithStack(domainerrors.ErrPaymentConfig)
	}

	var order entity.PaymentOrder
	err = call(ctx, srv.gateway, &service.Request{
		Method: http.MethodPost,
		Path:   pathPaymentCreate,
		JSON: map[string]any{
			"booking_id": booking.ID,
			"amount":     booking.TotalPrice.Float64(),
		},
	}, &order)
	if err != nil {
		logger.Error("Failed to create payment order", slog.Any("error", err))

		return nil, domainerrors.NewPaymentError(bookingID, stageOrder, srv.orderError(ctx, err))
	}
	if order.OrderID == "" {
		return nil, domainerrors.NewPaymentError(bookingID, stageOrder,
			domainerrors.ErrPaymentFailed.WithDetails("order response has no order id"))
	}

	proof, err := srv.widget.Open(ctx, srv.checkoutRequest(booking, user, &order))
	if err != nil {
		logger.Warn("Checkout did not complete", slog.String("order_id", order.OrderID), slog.Any("error", err))

		return nil, domainerrors.NewPaymentError(bookingID, stageCheckout, checkoutError(err))
	}

	var verification entity.PaymentVerification
	if err := call(ctx, srv.gateway, &service.Request{
		Method: http.MethodPost,
		Path:   pathPaymentVerify,
		JSON:   proof,
	}, &verification); err != nil {
		logger.Error("Payment verification failed",
			slog.String("order_id", order.OrderID),
			slog.String("payment_id", proof.PaymentID),
			slog.Any("error", err),
		)
		srv.session.HandleUnauthorized(ctx, err)

		return nil, domainerrors.NewPaymentError(bookingID, stageVerify,
			errors.Wrap(domainerrors.ErrPaymentVerification.WithDetails(err.Error()), "verify payment"))
	}
	if !verification.Success {
		return nil, domainerrors.NewPaymentError(bookingID, stageVerify,
			domainerrors.ErrPaymentVerification.WithDetails("server did not confirm the payment"))
	}

	logger.Info("Payment verified", slog.String("order_id", order.OrderID), slog.String("payment_id", proof.PaymentID))

	return &usecase.PaymentResult{
		BookingID: bookingID,
		OrderID:   order.OrderID,
		PaymentID: proof.PaymentID,
		Amount:    order.Amount,
		Paid:      true,
	}, nil
}

func (srv *paymentService) checkoutRequest(booking *entity.Booking, user *entity.User, order *entity.PaymentOrder) *service.CheckoutRequest {
	name, email := user.Name, user.Email
	if booking.User != nil {
		name, email = booking.User.Name, booking.User.Email
	}

	return &service.CheckoutRequest{
		BookingID:      booking.ID,
		KeyID:          srv.cfg.KeyID,
		OrderID:        order.OrderID,
		AmountSubunits: order.AmountSubunits(),
		Currency:       srv.cfg.Currency,
		MerchantName:   srv.cfg.MerchantName,
		Description:    fmt.Sprintf("Payment for Booking #%d", booking.ID),
		ThemeColor:     srv.cfg.ThemeColor,
		PrefillName:    name,
		PrefillEmail:   email,
	}
}

func (srv *paymentService) orderError(ctx context.Context, err error) error {
	if apiErr, ok := service.AsAPIError(err); ok && apiErr.IsNotFound() {
		return errors.Wrap(domainerrors.ErrBookingNotFound, err.Error())
	}
	if domainerrors.AsAppError(err) != nil || service.IsUnauthorized(err) {
		return sessionError(ctx, srv.session, err, "create payment order")
	}

	return errors.Wrap(domainerrors.ErrPaymentFailed.WithDetails(err.Error()), "create payment order")
}

// checkoutError gives provider failures a user-facing message.
func checkoutError(err error) error {
	var failure *service.CheckoutFailure
	if !errors.As(err, &failure) {
		return err
	}
	if failure.Description == "" {
		return errors.Wrap(domainerrors.ErrPaymentFailed.WithDetails(failure.Code), failure.Error())
	}

	return errors.Wrap(domainerrors.NewBaseError(
		domainerrors.ErrPaymentFailed.HTTPCode(),
		domainerrors.ErrPaymentFailed.ErrorCode(),
		"Payment failed: "+failure.Description,
		failure.Code,
	), failure.Error())
}
