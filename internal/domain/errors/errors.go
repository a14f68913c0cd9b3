package errors

import (
	"net/http"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// AppError defines the interface for errors that are shown to the user
type AppError interface {
	error
	HTTPCode() int     // Closest HTTP status, used by the checkout host
	ErrorCode() string // Stable machine-readable code
	Message() string   // User-facing message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails returns a copy carrying detailed error information.
// The copy still matches its source with errors.Is.
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Is matches BaseErrors by code so copies made by WithDetails compare equal.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return t.errorCode == e.errorCode
}

// Predefined error types
var (
	ErrNetwork = NewBaseError(
		http.StatusBadGateway,
		"NETWORK_ERROR",
		"Could not reach the server. Check your connection and try again.",
		"",
	)

	ErrUnauthorized = NewBaseError(
		http.StatusUnauthorized,
		"UNAUTHORIZED",
		"Your session has expired. Please log in again.",
		"",
	)

	ErrLoginRequired = NewBaseError(
		http.StatusUnauthorized,
		"LOGIN_REQUIRED",
		"Please log in to continue.",
		"",
	)

	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"Invalid email or password. Please try again.",
		"",
	)

	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Some fields are invalid.",
		"",
	)

	ErrRegistrationFailed = NewBaseError(
		http.StatusBadRequest,
		"REGISTRATION_FAILED",
		"Registration failed. Please try again.",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"The requested item was not found.",
		"",
	)

	ErrBookingNotFound = NewBaseError(
		http.StatusNotFound,
		"BOOKING_NOT_FOUND",
		"Booking not found.",
		"",
	)

	ErrNoCentersFound = NewBaseError(
		http.StatusNotFound,
		"NO_CENTERS_FOUND",
		"No collection centers found.",
		"",
	)

	ErrBookingFailed = NewBaseError(
		http.StatusBadGateway,
		"BOOKING_FAILED",
		"Error creating booking. Please try again.",
		"",
	)

	ErrPaymentConfig = NewBaseError(
		http.StatusInternalServerError,
		"PAYMENT_NOT_CONFIGURED",
		"Payment key is not configured. Please contact administrator.",
		"",
	)

	ErrPaymentFailed = NewBaseError(
		http.StatusPaymentRequired,
		"PAYMENT_FAILED",
		"Payment failed. Please try again.",
		"",
	)

	ErrPaymentVerification = NewBaseError(
		http.StatusBadGateway,
		"PAYMENT_VERIFICATION_FAILED",
		"Payment verification failed. Please try again or contact support.",
		"",
	)

	ErrCheckoutUnavailable = NewBaseError(
		http.StatusServiceUnavailable,
		"CHECKOUT_UNAVAILABLE",
		"Payment gateway is not available. Please try again.",
		"",
	)

	ErrAlreadyPaid = NewBaseError(
		http.StatusConflict,
		"ALREADY_PAID",
		"Payment already completed.",
		"",
	)

	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Something went wrong. Please try again.",
		"",
	)
)

// ValidationError carries field-level messages, either produced locally or
// reported by the server in the {"field": ["message", ...]} shape.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError creates a validation error for the given fields.
func NewValidationError(fields map[string][]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return "validation failed: " + e.Details()
}

// HTTPCode returns the HTTP status code
func (e *ValidationError) HTTPCode() int {
	return http.StatusBadRequest
}

// ErrorCode returns the business error code
func (e *ValidationError) ErrorCode() string {
	return ErrValidationFailed.ErrorCode()
}

// Message returns the first field message in field-name order, which is
// what a form shows inline.
func (e *ValidationError) Message() string {
	for _, field := range e.fieldNames() {
		if msgs := e.Fields[field]; len(msgs) > 0 {
			return msgs[0]
		}
	}

	return ErrValidationFailed.Message()
}

// Details lists every field message.
func (e *ValidationError) Details() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.fieldNames() {
		parts = append(parts, field+": "+strings.Join(e.Fields[field], "; "))
	}

	return strings.Join(parts, ", ")
}

// Field returns the first message for one field.
func (e *ValidationError) Field(name string) string {
	if msgs := e.Fields[name]; len(msgs) > 0 {
		return msgs[0]
	}

	return ""
}

// Is lets errors.Is(err, ErrValidationFailed) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

func (e *ValidationError) fieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// PaymentError reports a failed payment handoff. The booking is untouched
// and the user may retry.
type PaymentError struct {
	BookingID int64
	Stage     string
	cause     error
}

// NewPaymentError creates a payment error for a stage of the handoff.
func NewPaymentError(bookingID int64, stage string, cause error) *PaymentError {
	return &PaymentError{BookingID: bookingID, Stage: stage, cause: cause}
}

// Error implements the error interface
func (e *PaymentError) Error() string {
	return "payment " + e.Stage + " failed: " + e.cause.Error()
}

// Unwrap exposes the cause.
func (e *PaymentError) Unwrap() error {
	return e.cause
}

// Retryable is always true: nothing was mutated locally.
func (e *PaymentError) Retryable() bool {
	return true
}

// HTTPCode returns the HTTP status code
func (e *PaymentError) HTTPCode() int {
	if app := AsAppError(e.cause); app != nil {
		return app.HTTPCode()
	}

	return http.StatusBadGateway
}

// ErrorCode returns the business error code
func (e *PaymentError) ErrorCode() string {
	if app := AsAppError(e.cause); app != nil {
		return app.ErrorCode()
	}

	return ErrPaymentFailed.ErrorCode()
}

// Message returns the user-friendly error message
func (e *PaymentError) Message() string {
	if app := AsAppError(e.cause); app != nil {
		return app.Message()
	}

	return ErrPaymentFailed.Message()
}

// Details returns detailed error information
func (e *PaymentError) Details() string {
	return e.cause.Error()
}

// AsAppError returns the first AppError in err's chain, or nil.
func AsAppError(err error) AppError {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return nil
}

// UserMessage renders err the way a page shows it inline.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if appErr := AsAppError(err); appErr != nil {
		return appErr.Message()
	}

	return ErrInternalError.Message()
}
