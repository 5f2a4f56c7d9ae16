package types

import (
	"errors"
	"fmt"
)

// ErrBadField is the configuration error: a record's link field does not
// specify VME I/O. It is detected once at record initialization and never
// retried; the record stays non-functional.
var ErrBadField = errors.New("bad field")

// Errors for named record operations.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrNotOutput      = errors.New("record is not an output kind")
	ErrNotBound       = errors.New("record is not bound")
)

// DriverError carries a nonzero status code returned by the card driver.
// The code is driver-specific and opaque; it is passed through to callers
// unchanged so the hosting runtime sees exactly what the driver reported.
type DriverError struct {
	Op   string
	Card int
	Code int
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("%s card %d: driver status %d", e.Op, e.Card, e.Code)
}

// DriverStatus extracts the opaque driver code from err, or 0 when err is
// nil or not a driver failure.
func DriverStatus(err error) int {
	var derr *DriverError
	if errors.As(err, &derr) {
		return derr.Code
	}
	return 0
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// NewErrorResponse builds a consistent API error payload.
// details can be string, map, struct, etc.
func NewErrorResponse(code, message string, details any) ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}
