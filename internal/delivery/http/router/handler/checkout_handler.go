// Package handler implements the checkout callback endpoints.
package handler

import (
	_ "embed"
	"html/template"
	"log/slog"
	"net/http"
	"sync/atomic"

	deliverycontext "pickup/internal/delivery/context"
	"pickup/internal/delivery/http/response"
	"pickup/internal/domain/entity"
	domainerrors "pickup/internal/domain/errors"
	"pickup/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ScriptLoadFailed is the failure code the page reports when the provider
// script cannot be loaded.
const ScriptLoadFailed = "SCRIPT_LOAD_FAILED"

//go:embed checkout.html
var checkoutPage string

var checkoutTemplate = template.Must(template.New("checkout").Parse(checkoutPage))

// CheckoutOutcome is what the widget reported: a proof or an error.
type CheckoutOutcome struct {
	Proof *entity.CheckoutProof
	Err   error
}

// CheckoutOptions are passed verbatim to the provider widget.
type CheckoutOptions struct {
	Key         string          `json:"key"`
	Amount      int64           `json:"amount"`
	Currency    string          `json:"currency"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	OrderID     string          `json:"order_id"`
	Prefill     CheckoutPrefill `json:"prefill"`
	Theme       CheckoutTheme   `json:"theme"`
}

// CheckoutPrefill fills the widget's contact fields.
type CheckoutPrefill struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// CheckoutTheme sets the widget color.
type CheckoutTheme struct {
	Color string `json:"color,omitempty"`
}

type checkoutPageData struct {
	BookingID   int64
	AmountLabel string
	BasePath    string
	ScriptURL   string
	Options     CheckoutOptions
}

type failureRequest struct {
	Code        string `json:"code" form:"code"`
	Description string `json:"description" form:"description"`
}

// CheckoutHandler serves one checkout session. A provider failure keeps the
// session open so the user can retry in the same widget; completion,
// dismissal or a script load failure finishes it, and later callbacks are
// rejected.
type CheckoutHandler struct {
	session     string
	request     *service.CheckoutRequest
	scriptURL   string
	logger      *slog.Logger
	outcomes    chan CheckoutOutcome
	reported    atomic.Bool
	lastFailure atomic.Pointer[service.CheckoutFailure]
}

// NewCheckoutHandler creates the handler for session.
func NewCheckoutHandler(session string, req *service.CheckoutRequest, scriptURL string, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		session:   session,
		request:   req,
		scriptURL: scriptURL,
		logger:    logger,
		outcomes:  make(chan CheckoutOutcome, 1),
	}
}

// Outcomes delivers exactly one outcome.
func (h *CheckoutHandler) Outcomes() <-chan CheckoutOutcome {
	return h.outcomes
}

// Page renders the page that opens the provider widget.
func (h *CheckoutHandler) Page(c echo.Context) error {
	if err := h.checkSession(c); err != nil {
		return err
	}

	req := h.request
	data := checkoutPageData{
		BookingID:   req.BookingID,
		AmountLabel: entity.FormatRupees(float64(req.AmountSubunits) / 100),
		BasePath:    "/checkout/" + h.session,
		ScriptURL:   h.scriptURL,
		Options: CheckoutOptions{
			Key:         req.KeyID,
			Amount:      req.AmountSubunits,
			Currency:    req.Currency,
			Name:        req.MerchantName,
			Description: req.Description,
			OrderID:     req.OrderID,
			Prefill:     CheckoutPrefill{Name: req.PrefillName, Email: req.PrefillEmail},
			Theme:       CheckoutTheme{Color: req.ThemeColor},
		},
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)

	return errors.WithStack(checkoutTemplate.Execute(c.Response(), data))
}

// Complete receives the provider proof.
func (h *CheckoutHandler) Complete(c echo.Context) error {
	if err := h.checkSession(c); err != nil {
		return err
	}

	var proof entity.CheckoutProof
	if err := c.Bind(&proof); err != nil {
		return response.BadRequest(c, "INVALID_PROOF", "Invalid payment response")
	}
	if proof.OrderID == "" || proof.PaymentID == "" || proof.Signature == "" {
		return response.BadRequest(c, "INVALID_PROOF", "Incomplete payment response")
	}
	if proof.OrderID != h.request.OrderID {
		return response.BadRequest(c, "ORDER_MISMATCH", "Payment response is for another order")
	}

	if !h.report(CheckoutOutcome{Proof: &proof}) {
		return response.Conflict(c, "ALREADY_REPORTED", "This checkout has already finished")
	}
	h.log(c).Info("Checkout completed", slog.String("order_id", proof.OrderID))

	return response.Success(c, http.StatusOK, nil, "Payment submitted")
}

// Failed receives a provider failure or a script load failure. Only the
// latter finishes the session; a provider failure is remembered and the
// widget stays open for another attempt.
func (h *CheckoutHandler) Failed(c echo.Context) error {
	if err := h.checkSession(c); err != nil {
		return err
	}

	var body failureRequest
	if err := c.Bind(&body); err != nil {
		return response.BadRequest(c, "INVALID_FAILURE", "Invalid failure report")
	}

	if body.Code == ScriptLoadFailed {
		outcome := domainerrors.ErrCheckoutUnavailable.WithDetails(body.Description)
		if !h.report(CheckoutOutcome{Err: outcome}) {
			return response.Conflict(c, "ALREADY_REPORTED", "This checkout has already finished")
		}
		h.log(c).Warn("Checkout script failed to load", slog.String("description", body.Description))

		return response.Success(c, http.StatusOK, nil, "Failure recorded")
	}

	if h.reported.Load() {
		return response.Conflict(c, "ALREADY_REPORTED", "This checkout has already finished")
	}
	h.lastFailure.Store(&service.CheckoutFailure{Code: body.Code, Description: body.Description})
	h.log(c).Warn("Checkout attempt failed",
		slog.String("code", body.Code),
		slog.String("description", body.Description),
	)

	return response.Success(c, http.StatusOK, nil, "Failure recorded")
}

// Dismiss records that the user closed the widget. After a failed attempt
// the failure is reported instead of a plain dismissal.
func (h *CheckoutHandler) Dismiss(c echo.Context) error {
	if err := h.checkSession(c); err != nil {
		return err
	}

	var outcome error = service.ErrCheckoutDismissed
	if failure := h.LastFailure(); failure != nil {
		outcome = failure
	}

	if !h.report(CheckoutOutcome{Err: outcome}) {
		return response.Conflict(c, "ALREADY_REPORTED", "This checkout has already finished")
	}
	h.log(c).Info("Checkout dismissed")

	return response.Success(c, http.StatusOK, nil, "Checkout dismissed")
}

// HealthCheck reports that the callback server is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, nil, "OK")
}

// LastFailure returns the most recent provider failure, or nil.
func (h *CheckoutHandler) LastFailure() *service.CheckoutFailure {
	return h.lastFailure.Load()
}

func (h *CheckoutHandler) checkSession(c echo.Context) error {
	if c.Param("session") != h.session {
		return echo.ErrNotFound
	}

	return nil
}

func (h *CheckoutHandler) report(outcome CheckoutOutcome) bool {
	if !h.reported.CompareAndSwap(false, true) {
		return false
	}
	h.outcomes <- outcome

	return true
}

func (h *CheckoutHandler) log(c echo.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(c.Request().Context(), h.logger)
}
