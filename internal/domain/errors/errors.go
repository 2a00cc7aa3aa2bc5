package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrConflict           = errors.New("state conflict")
	ErrExpired            = errors.New("expired")
	ErrDependency         = errors.New("dependency failure")
	ErrMerchantNotActive  = errors.New("merchant not active")
	ErrPaymentFailed      = errors.New("payment failed")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidSession     = errors.New("invalid session")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrIssueLimitReached  = errors.New("coupon issue limit reached")
	ErrSoldOut            = errors.New("sold out")
)

// AppError represents application error with HTTP status
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the sentinel so errors.Is works through AppError
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// BadRequest is a validation failure (400)
func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrInvalidInput)
}

func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, message, ErrNotFound)
}

// Conflict is a state that is not eligible for the requested transition (400)
func Conflict(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrConflict)
}

// AlreadyExists is a uniqueness violation (409)
func AlreadyExists(message string) *AppError {
	return NewAppError(http.StatusConflict, message, ErrAlreadyExists)
}

// Expired is an elapsed time window (410)
func Expired(message string) *AppError {
	return NewAppError(http.StatusGone, message, ErrExpired)
}

// Dependency is a storage or third-party failure. The cause is kept for logs only.
func Dependency(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "internal server error", fmt.Errorf("%w: %v", ErrDependency, err))
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, message, ErrForbidden)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "internal server error", err)
}

// Wrap attaches a sentinel to a message with the given status
func Wrap(code int, message string, sentinel error) *AppError {
	return NewAppError(code, message, sentinel)
}

// As returns the AppError in err's chain, if any
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
