package pricing

import "net/http"

type ErrorCode string

const (
	SERVICE_NOT_FOUND    ErrorCode = "SERVICE_NOT_FOUND"
	INVALID_OVERRIDE     ErrorCode = "INVALID_OVERRIDE"
	SETTINGS_UNAVAILABLE ErrorCode = "SETTINGS_UNAVAILABLE"
	INSUFFICIENT_POINTS  ErrorCode = "INSUFFICIENT_POINTS"
)

// Error is a domain-level pricing failure. Status is a suggested HTTP status
// for the boundary; the taxonomy itself is transport-agnostic.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NewError(code ErrorCode, message string) *Error {
	status := http.StatusBadRequest
	switch code {
	case SETTINGS_UNAVAILABLE:
		status = http.StatusInternalServerError
	case INSUFFICIENT_POINTS:
		status = http.StatusConflict
	}
	return &Error{Code: code, Status: status, Message: message}
}
