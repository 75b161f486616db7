package errors

import "net/http"

// ErrorCode represents the type of error
type ErrorCode string

const (
	ErrNotFound        ErrorCode = "NOT_FOUND"
	ErrUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrForbidden       ErrorCode = "FORBIDDEN"
	ErrValidation      ErrorCode = "VALIDATION_ERROR"
	ErrBadRequest      ErrorCode = "BAD_REQUEST"
	ErrInternalError   ErrorCode = "INTERNAL_ERROR"
	ErrAlreadyReported ErrorCode = "ALREADY_REPORTED"
	ErrCooldownActive  ErrorCode = "COOLDOWN_ACTIVE"
	ErrTxConflict      ErrorCode = "TRANSACTION_CONFLICT"
	ErrRateLimited     ErrorCode = "RATE_LIMITED"
	ErrServiceUnavail  ErrorCode = "SERVICE_UNAVAILABLE"
)

// StatusCodeMap maps ErrorCode to HTTP status code
var StatusCodeMap = map[ErrorCode]int{
	ErrNotFound:        http.StatusNotFound,
	ErrUnauthorized:    http.StatusUnauthorized,
	ErrForbidden:       http.StatusForbidden,
	ErrValidation:      http.StatusUnprocessableEntity,
	ErrBadRequest:      http.StatusBadRequest,
	ErrInternalError:   http.StatusInternalServerError,
	ErrAlreadyReported: http.StatusConflict,
	ErrCooldownActive:  http.StatusTooManyRequests,
	ErrTxConflict:      http.StatusConflict,
	ErrRateLimited:     http.StatusTooManyRequests,
	ErrServiceUnavail:  http.StatusServiceUnavailable,
}

// StatusCode returns the HTTP status code for this error code
func (e ErrorCode) StatusCode() int {
	if code, ok := StatusCodeMap[e]; ok {
		return code
	}
	return http.StatusInternalServerError
}
