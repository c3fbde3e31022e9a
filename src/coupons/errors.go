package coupons

import "net/http"

type ErrorCode string

const (
	NOT_FOUND                ErrorCode = "NOT_FOUND"
	INACTIVE                 ErrorCode = "INACTIVE"
	EXPIRED                  ErrorCode = "EXPIRED"
	NOT_YET_VALID            ErrorCode = "NOT_YET_VALID"
	BELOW_MINIMUM            ErrorCode = "BELOW_MINIMUM"
	SERVICE_NOT_ELIGIBLE     ErrorCode = "SERVICE_NOT_ELIGIBLE"
	REDEMPTION_LIMIT_REACHED ErrorCode = "REDEMPTION_LIMIT_REACHED"
	USER_LIMIT_REACHED       ErrorCode = "USER_LIMIT_REACHED"
	INVALID_STATE            ErrorCode = "INVALID_STATE"
)

// Error is a domain-level coupon failure with a suggested HTTP status for
// the boundary to translate.
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
	case NOT_FOUND:
		status = http.StatusNotFound
	case REDEMPTION_LIMIT_REACHED, USER_LIMIT_REACHED:
		status = http.StatusForbidden
	}
	return &Error{Code: code, Status: status, Message: message}
}
