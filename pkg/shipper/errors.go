package shipper

import (
	"errors"
	"fmt"
)

// ShipperError represents an error from a shipping carrier.
type ShipperError struct {
	Carrier    string
	Code       string
	Message    string
	StatusCode int
	Retryable  bool
	Cause      error
}

// Error implements the error interface.
func (e *ShipperError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error (%s): %s: %v", e.Carrier, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Carrier, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ShipperError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for ShipperError.
func (e *ShipperError) Is(target error) bool {
	t, ok := target.(*ShipperError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewShipperError creates a new ShipperError.
func NewShipperError(carrier, code, message string) *ShipperError {
	return &ShipperError{
		Carrier: carrier,
		Code:    code,
		Message: message,
	}
}

// WithCause adds a cause to the error.
func (e *ShipperError) WithCause(err error) *ShipperError {
	e.Cause = err
	return e
}

// WithStatusCode adds an HTTP status code to the error.
func (e *ShipperError) WithStatusCode(code int) *ShipperError {
	e.StatusCode = code
	return e
}

// WithRetryable marks the error as retryable.
func (e *ShipperError) WithRetryable(retryable bool) *ShipperError {
	e.Retryable = retryable
	return e
}

// Sentinel errors for common shipping scenarios.
var (
	// ErrInvalidAddress indicates the address is invalid or incomplete.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrServiceUnavailable indicates the carrier service is temporarily unavailable.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrQuoteExpired indicates the quote has expired and cannot be used.
	ErrQuoteExpired = errors.New("quote has expired")

	// ErrQuoteNotFound indicates the quote ID was not found.
	ErrQuoteNotFound = errors.New("quote not found")

	// ErrOrderNotFound indicates the order ID was not found.
	ErrOrderNotFound = errors.New("order not found")

	// ErrLabelNotAvailable indicates the label is not yet available.
	ErrLabelNotAvailable = errors.New("label not available")

	// ErrAuthorization indicates missing credentials or a failed token exchange.
	ErrAuthorization = errors.New("authorization failed")

	// ErrInvalidAttribute indicates a request field is missing, empty, or fails
	// a carrier precondition. It is raised before anything is sent.
	ErrInvalidAttribute = errors.New("invalid attribute")

	// ErrTrackingNotFound indicates the carrier has no activity for a tracking number.
	ErrTrackingNotFound = errors.New("tracking information not found")

	// ErrRateLimitExceeded indicates the carrier rate limit was exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrInvalidPackage indicates package dimensions or weight are invalid.
	ErrInvalidPackage = errors.New("invalid package")

	// ErrCarrierNotFound indicates the requested carrier is not registered.
	ErrCarrierNotFound = errors.New("carrier not found")
)

// Error codes shared by carrier packages.
const (
	CodeInvalidAttribute = "INVALID_ATTRIBUTE"
	CodeAuthorization    = "AUTHORIZATION"
	CodeTransport        = "TRANSPORT"
	CodeMalformed        = "MALFORMED_RESPONSE"
	CodeCarrier          = "CARRIER_ERROR"
)

// InvalidAttribute returns an error for a field that failed local validation.
func InvalidAttribute(carrier, message string) *ShipperError {
	return NewShipperError(carrier, CodeInvalidAttribute, message).WithCause(ErrInvalidAttribute)
}

// AuthorizationFailed returns an error for a credential or token failure.
// A non-nil cause is kept alongside ErrAuthorization so both match errors.Is.
func AuthorizationFailed(carrier, message string, cause error) *ShipperError {
	err := NewShipperError(carrier, CodeAuthorization, message)
	if cause != nil {
		return err.WithCause(fmt.Errorf("%w: %w", ErrAuthorization, cause))
	}
	return err.WithCause(ErrAuthorization)
}

// IsInvalidAttribute reports whether err was raised by local request validation.
func IsInvalidAttribute(err error) bool {
	return errors.Is(err, ErrInvalidAttribute)
}

// IsAuthorization reports whether err is a credential or token failure.
func IsAuthorization(err error) bool {
	return errors.Is(err, ErrAuthorization)
}

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var shipperErr *ShipperError
	if errors.As(err, &shipperErr) {
		return shipperErr.Retryable
	}
	return errors.Is(err, ErrServiceUnavailable) || errors.Is(err, ErrRateLimitExceeded)
}
