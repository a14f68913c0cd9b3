// Package checkout hosts the third-party payment widget on a local page and
// waits for it to report back.
package checkout

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"pickup/config"
	deliverycontext "pickup/internal/delivery/context"
	deliveryhttp "pickup/internal/delivery/http"
	"pickup/internal/delivery/http/router"
	"pickup/internal/delivery/http/router/handler"
	"pickup/internal/domain/entity"
	domainerrors "pickup/internal/domain/errors"
	"pickup/internal/domain/service"
	"pickup/internal/util"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// callbackWidget implements service.CheckoutWidget with a local echo
// server. The user opens the printed link (or scans its QR code), pays in
// the provider widget, and the page posts the result back.
type callbackWidget struct {
	host      string
	port      int
	timeout   time.Duration
	scriptURL string
	debug     bool
	qr        service.QRCodeService
	out       io.Writer
	logger    *slog.Logger

	// announce is called with the checkout URL once the server is up.
	announce func(url string)
}

// Params holds dependencies for the checkout widget, injected by Fx
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
	QRCode service.QRCodeService
	Output io.Writer `name:"console" optional:"true"`
}

// NewCallbackWidget creates the widget from the payment config section.
func NewCallbackWidget(params Params) service.CheckoutWidget {
	out := params.Output
	if out == nil {
		out = os.Stdout
	}
	cfg := params.Config.Payment

	w := &callbackWidget{
		host:      cfg.Callback.Host,
		port:      cfg.Callback.Port,
		timeout:   cfg.Callback.Timeout,
		scriptURL: cfg.ScriptURL,
		debug:     params.Config.Env.Debug,
		qr:        params.QRCode,
		out:       out,
		logger:    params.Logger,
	}
	w.announce = w.printLink

	return w
}

// Open serves the checkout page and blocks until the page reports a result,
// the configured timeout passes, or ctx ends.
func (w *callbackWidget) Open(ctx context.Context, req *service.CheckoutRequest) (*entity.CheckoutProof, error) {
	if w.scriptURL == "" {
		return nil, domainerrors.ErrCheckoutUnavailable.WithDetails("payment.scriptUrl is not configured")
	}

	logger := deliverycontext.GetLoggerOrDefault(ctx, w.logger)
	session := uuid.NewString()

	checkoutHandler := handler.NewCheckoutHandler(session, req, w.scriptURL, logger)
	server := deliveryhttp.NewServer(logger, w.debug)
	router.NewRouter(checkoutHandler).RegisterRoutes(server.Echo())

	baseURL, err := server.Start(w.host, w.port)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrCheckoutUnavailable.WithDetails(err.Error()), "start checkout server")
	}
	defer func() {
		if err := server.Stop(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("Failed to stop checkout server", slog.Any("error", err))
		}
	}()

	checkoutURL := baseURL + "/checkout/" + session
	logger.Info("Waiting for checkout",
		slog.Int64("booking_id", req.BookingID),
		slog.String("order_id", req.OrderID),
		slog.String("url", checkoutURL),
	)
	w.announce(checkoutURL)

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	select {
	case outcome := <-checkoutHandler.Outcomes():
		if outcome.Err != nil {
			return nil, outcome.Err
		}

		return outcome.Proof, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			if failure := checkoutHandler.LastFailure(); failure != nil {
				return nil, failure
			}

			return nil, errors.Wrapf(domainerrors.ErrPaymentFailed.WithDetails("checkout timed out"),
				"no checkout result within %s", util.FormatDuration(w.timeout))
		}

		return nil, errors.WithStack(ctx.Err())
	}
}

func (w *callbackWidget) printLink(url string) {
	fmt.Fprintf(w.out, "Open this link to pay:\n  %s\n", url)
	if w.qr == nil {
		return
	}
	code, err := w.qr.TerminalQR(url)
	if err != nil {
		w.logger.Warn("Failed to render checkout QR code", slog.Any("error", err))

		return
	}
	fmt.Fprintf(w.out, "\nOr scan it from your phone:\n%s\n", code)
}

// Module provides the checkout widget FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewCallbackWidget),
)
