package outstock

import (
	"errors"

	"github.com/mamadbah2/stockdesk/pkg/clients/stockapi"
)

// User-visible messages shown in the session message slot.
const (
	MsgStockNotFound     = "Stock not found"
	MsgInsufficientStock = "Cannot issue more stock than available"
	MsgSubmitFailed      = "Error occurred while processing the request"
	MsgInFlight          = "An issuance is already being processed"
)

var (
	// ErrStockNotFound indicates the requested stock is absent from the snapshot.
	ErrStockNotFound = errors.New("stock not found")
	// ErrInsufficientStock indicates the requested quantity exceeds the cached availability.
	ErrInsufficientStock = errors.New("cannot issue more stock than available")
	// ErrInvalidRequest indicates a missing or malformed form field.
	ErrInvalidRequest = errors.New("invalid issuance request")
	// ErrSubmitFailed indicates the server did not confirm the issuance.
	ErrSubmitFailed = errors.New("issuance request failed")
	// ErrSubmissionInFlight indicates a submission is already waiting for the server.
	ErrSubmissionInFlight = errors.New("issuance already in progress")
	// ErrSessionNotFound indicates an unknown or expired session id.
	ErrSessionNotFound = errors.New("session not found")
)

// Kind tags where an issuance failure came from.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNetwork    Kind = "network"
	KindServer     Kind = "server"
)

// Error is returned by Session.Submit. It unwraps to both the sentinel and
// the underlying cause.
type Error struct {
	Kind    Kind
	Err     error
	Cause   error
	Message string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Err.Error() + ": " + e.Cause.Error()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// KindOf returns the kind of an issuance error, or "" for other errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func validationError(sentinel error, message string) *Error {
	return &Error{Kind: KindValidation, Err: sentinel, Message: message}
}

func submitError(cause error) *Error {
	kind := KindServer
	if stockapi.IsTransport(cause) {
		kind = KindNetwork
	}
	return &Error{Kind: kind, Err: ErrSubmitFailed, Cause: cause, Message: MsgSubmitFailed}
}
