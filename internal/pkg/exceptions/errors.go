package exceptions

import (
	"errors"
	"fmt"
	"net/http"
)

// SupportMessage is shown when a payment callback cannot be matched to an order.
const SupportMessage = "We could not confirm your payment. Please contact support with your order code."

const (
	CodeInvalidTransition      = "INVALID_TRANSITION"
	CodeOrderNotFound          = "ORDER_NOT_FOUND"
	CodeInsufficientCollected  = "INSUFFICIENT_COLLECTED_AMOUNT"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodeNotFound               = "NOT_FOUND"
	CodeValidation             = "VALIDATION_FAILED"
	CodeDuplicatePending       = "DUPLICATE_PENDING_REQUEST"
	CodeGateway                = "PAYMENT_GATEWAY_ERROR"
)

// HTTPError is implemented by every domain error so the error handler can render it.
type HTTPError interface {
	error
	StatusCode() int
	Code() string
	ClientMessage() string
}

// InvalidTransitionError means the operation's precondition on status was not met.
type InvalidTransitionError struct {
	Op      string
	Current string
	Reason  string
}

func (e *InvalidTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot %s appointment in status %q: %s", e.Op, e.Current, e.Reason)
	}
	return fmt.Sprintf("cannot %s appointment in status %q", e.Op, e.Current)
}
func (e *InvalidTransitionError) StatusCode() int       { return http.StatusConflict }
func (e *InvalidTransitionError) Code() string          { return CodeInvalidTransition }
func (e *InvalidTransitionError) ClientMessage() string { return e.Error() }

type OrderNotFoundError struct {
	OrderCode string
}

func (e *OrderNotFoundError) Error() string {
	return fmt.Sprintf("no payment attempt for order code %q", e.OrderCode)
}
func (e *OrderNotFoundError) StatusCode() int       { return http.StatusNotFound }
func (e *OrderNotFoundError) Code() string          { return CodeOrderNotFound }
func (e *OrderNotFoundError) ClientMessage() string { return SupportMessage }

type InsufficientCollectedAmountError struct {
	Requested string
	Collected string
}

func (e *InsufficientCollectedAmountError) Error() string {
	return fmt.Sprintf("refund %s exceeds collected amount %s", e.Requested, e.Collected)
}
func (e *InsufficientCollectedAmountError) StatusCode() int       { return http.StatusUnprocessableEntity }
func (e *InsufficientCollectedAmountError) Code() string          { return CodeInsufficientCollected }
func (e *InsufficientCollectedAmountError) ClientMessage() string { return e.Error() }

// ConcurrentModificationError means the status compare-and-swap lost a race.
// Callers re-fetch and retry from the UI.
type ConcurrentModificationError struct {
	AppointmentID string
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("appointment %s was modified concurrently", e.AppointmentID)
}
func (e *ConcurrentModificationError) StatusCode() int { return http.StatusConflict }
func (e *ConcurrentModificationError) Code() string    { return CodeConcurrentModification }
func (e *ConcurrentModificationError) ClientMessage() string {
	return "The appointment was changed by someone else. Reload and try again."
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string         { return fmt.Sprintf("%s %s not found", e.Entity, e.ID) }
func (e *NotFoundError) StatusCode() int       { return http.StatusNotFound }
func (e *NotFoundError) Code() string          { return CodeNotFound }
func (e *NotFoundError) ClientMessage() string { return e.Error() }

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string         { return e.Message }
func (e *ValidationError) StatusCode() int       { return http.StatusBadRequest }
func (e *ValidationError) Code() string          { return CodeValidation }
func (e *ValidationError) ClientMessage() string { return e.Message }

type DuplicatePendingRequestError struct {
	AppointmentID string
}

func (e *DuplicatePendingRequestError) Error() string {
	return fmt.Sprintf("appointment %s already has a pending cancellation request", e.AppointmentID)
}
func (e *DuplicatePendingRequestError) StatusCode() int       { return http.StatusConflict }
func (e *DuplicatePendingRequestError) Code() string          { return CodeDuplicatePending }
func (e *DuplicatePendingRequestError) ClientMessage() string { return e.Error() }

type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string         { return fmt.Sprintf("payment gateway %s: %v", e.Op, e.Err) }
func (e *GatewayError) Unwrap() error         { return e.Err }
func (e *GatewayError) StatusCode() int       { return http.StatusBadGateway }
func (e *GatewayError) Code() string          { return CodeGateway }
func (e *GatewayError) ClientMessage() string { return "Payment gateway is unavailable, please retry." }

func NewValidation(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func NewNotFound(entity string, id fmt.Stringer) error {
	return &NotFoundError{Entity: entity, ID: id.String()}
}

// AsHTTP unwraps err to the first domain error, if any.
func AsHTTP(err error) (HTTPError, bool) {
	var he HTTPError
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}
