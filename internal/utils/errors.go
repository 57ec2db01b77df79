package utils

import "errors"

// AppError carries a machine-distinguishable code plus a human-readable
// message. Origin preserves the underlying cause, if any.
type AppError struct {
	Code    string
	Message string
	Origin  error
}

func (appErr *AppError) Error() string {
	if appErr.Origin != nil {
		return appErr.Message + ": " + appErr.Origin.Error()
	}
	return appErr.Message
}

func (appErr *AppError) Unwrap() error {
	return appErr.Origin
}

// Standard error codes for the application
const (
	// Resource errors
	ErrNotFound     = "NOT_FOUND"
	ErrDuplicate    = "DUPLICATE" // slug collisions, existing accounts
	ErrInvalidInput = "INVALID_INPUT"

	// Authentication/Authorization errors.
	// ErrUnauthorized covers every resolution failure: responses never
	// reveal whether a token or a shared key was the credential that failed.
	ErrUnauthorized = "UNAUTHORIZED"
	ErrForbidden    = "FORBIDDEN" // authenticated but not owner or admin

	// Backing-service errors (store down, actor timeout); always retryable
	ErrUnavailable = "UNAVAILABLE"
)

func NewAppError(code string, message string, originalErr error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Origin:  originalErr,
	}
}

// Specific error creators for common cases
func NewNotFoundError(what string) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: what + " not found",
	}
}

func NewUnauthorizedError() *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "Invalid credentials",
	}
}

func NewForbiddenError() *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: "Forbidden",
	}
}

func NewInvalidInputError(message string) *AppError {
	return &AppError{
		Code:    ErrInvalidInput,
		Message: message,
	}
}

func NewUnavailableError(op string, originalErr error) *AppError {
	return &AppError{
		Code:    ErrUnavailable,
		Message: "Backing store unavailable during " + op,
		Origin:  originalErr,
	}
}

// IsErrorCode checks whether err is an AppError with the given code.
func IsErrorCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// AppErrorToHTTPStatus converts an AppError code to an HTTP status code.
func AppErrorToHTTPStatus(errorCode string) int {
	switch errorCode {
	case ErrNotFound:
		return 404 // http.StatusNotFound
	case ErrInvalidInput, ErrDuplicate:
		return 400 // http.StatusBadRequest
	case ErrUnauthorized:
		return 401 // http.StatusUnauthorized
	case ErrForbidden:
		return 403 // http.StatusForbidden
	case ErrUnavailable:
		return 500 // http.StatusInternalServerError
	default:
		return 500 // http.StatusInternalServerError for unknown errors
	}
}
