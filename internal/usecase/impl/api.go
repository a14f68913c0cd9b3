// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"net/http"
	"strconv"

	domainerrors "pickup/internal/domain/errors"
	"pickup/internal/domain/service"
	"pickup/internal/usecase"

	"github.com/pkg/errors"
)

// Remote API endpoints, relative to the configured base URL.
const (
	pathToken          = "auth/token/"
	pathMe             = "auth/me/"
	pathMeUpdate       = "auth/me/update/"
	pathRegister       = "auth/register/"
	pathWasteTypes     = "waste/types/"
	pathCenters        = "waste/centers/"
	pathNearestCenter  = "waste/centers/nearest/"
	pathBookingCreate  = "waste/booking/create/"
	pathBookingHistory = "waste/booking/history/"
	pathPaymentCreate  = "waste/payment/create/"
	pathPaymentVerify  = "waste/payment/verify/"
)

func bookingPath(id int64) string {
	return "waste/booking/" + strconv.FormatInt(id, 10) + "/"
}

// anonymous drops any stored bearer token from a request. The token and
// register endpoints reject requests carrying an expired token.
var anonymous = http.Header{"Authorization": nil}

// call dispatches req and decodes a 2xx body into out (when non-nil).
// Errors from the gateway are returned unwrapped so callers can inspect
// *service.APIError.
func call(ctx context.Context, gateway service.Gateway, req *service.Request, out any) error {
	resp, err := gateway.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	return errors.Wrapf(resp.Decode(out), "%s %s", req.Method, req.Path)
}

// sessionError logs the user out when err is a 401 and reports it as an
// expired session; any other error is wrapped with action.
func sessionError(ctx context.Context, session usecase.SessionUsecase, err error, action string) error {
	if session.HandleUnauthorized(ctx, err) {
		return errors.Wrap(domainerrors.ErrUnauthorized.WithDetails(err.Error()), action)
	}

	return errors.Wrap(err, action)
}
