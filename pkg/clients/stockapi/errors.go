package stockapi

import (
	"errors"
	"fmt"
)

// ErrNoResponse marks failures where the server never answered
// (connection refused, timeout, cancelled context).
var ErrNoResponse = errors.New("no response from inventory server")

// Error describes a failed inventory API call. StatusCode is zero when the
// request never produced a response.
type Error struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Transport reports whether the call failed before any response arrived.
func (e *Error) Transport() bool {
	return e.StatusCode == 0
}

// IsTransport reports whether err is an inventory API failure without a response.
func IsTransport(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Transport()
}
