package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// ErrorCode represents a unique error code
type ErrorCode string

// Error codes used across all packages
const (
	// Generic errors
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden     ErrorCode = "FORBIDDEN"
	ErrCodeConflict      ErrorCode = "CONFLICT"
	ErrCodeRateLimited   ErrorCode = "RATE_LIMITED"

	// Authentication errors
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeTokenInvalid       ErrorCode = "TOKEN_INVALID"

	// User/Account errors
	ErrCodeUserNotFound      ErrorCode = "USER_NOT_FOUND"
	ErrCodeUserAlreadyExists ErrorCode = "USER_ALREADY_EXISTS"
	ErrCodeUserDisabled      ErrorCode = "USER_DISABLED"

	// Role errors
	ErrCodeInvalidRole ErrorCode = "INVALID_ROLE"

	// Validation errors
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeMissingRequired  ErrorCode = "MISSING_REQUIRED"
)

// Error represents a structured error with code, message, and optional details
type Error struct {
	Code    ErrorCode              // Unique error code
	Message string                 // Human-readable error message
	Details map[string]interface{} // Optional additional details
	Err     error                  // Wrapped underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code and message,
// so package sentinels such as iam.ErrUserNotFound work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Message == e.Message
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// HTTPStatusCode returns the appropriate HTTP status code for this error
func (e *Error) HTTPStatusCode() int {
	return MapErrorCodeToHTTPStatus(e.Code)
}

// New creates a new Error with the given code and message
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new Error with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with code and message
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsCode checks if an error has a specific error code
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
// Returns ErrCodeInternal if the error is not a structured Error
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// GetDetails extracts the details from an error
// Returns nil if the error is not a structured Error
func GetDetails(err error) map[string]interface{} {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}

// MapErrorCodeToHTTPStatus maps error codes to HTTP status codes
func MapErrorCodeToHTTPStatus(code ErrorCode) int {
	switch code {
	// 400 Bad Request
	case ErrCodeInvalidInput, ErrCodeValidationFailed, ErrCodeMissingRequired,
		ErrCodeInvalidRole:
		return http.StatusBadRequest

	// 401 Unauthorized
	case ErrCodeUnauthorized, ErrCodeInvalidCredentials, ErrCodeTokenInvalid:
		return http.StatusUnauthorized

	// 403 Forbidden
	case ErrCodeForbidden, ErrCodeUserDisabled:
		return http.StatusForbidden

	// 404 Not Found
	case ErrCodeNotFound, ErrCodeUserNotFound:
		return http.StatusNotFound

	// 409 Conflict
	case ErrCodeConflict, ErrCodeAlreadyExists, ErrCodeUserAlreadyExists:
		return http.StatusConflict

	// 429 Too Many Requests
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests

	// 500 Internal Server Error (default)
	case ErrCodeInternal:
		fallthrough
	default:
		return http.StatusInternalServerError
	}
}

// NotFound creates a "not found" error
func NotFound(resourceType, identifier string) *Error {
	return Newf(ErrCodeNotFound, "%s not found: %s", resourceType, identifier)
}

// AlreadyExists creates an "already exists" error
func AlreadyExists(resourceType, identifier string) *Error {
	return Newf(ErrCodeAlreadyExists, "%s already exists: %s", resourceType, identifier)
}

// InvalidInput creates an "invalid input" error
func InvalidInput(field, reason string) *Error {
	return New(ErrCodeInvalidInput, fmt.Sprintf("invalid %s: %s", field, reason))
}

// Unauthorized creates an "unauthorized" error
func Unauthorized(message string) *Error {
	return New(ErrCodeUnauthorized, message)
}

// Forbidden creates a "forbidden" error
func Forbidden(message string) *Error {
	return New(ErrCodeForbidden, message)
}

// InternalWrap wraps an internal error
func InternalWrap(err error, message string) *Error {
	return Wrap(err, ErrCodeInternal, message)
}

// ErrorResponse is the JSON body written for failed requests
type ErrorResponse struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Render writes err as a JSON error response. Unstructured errors are
// reported as internal errors without leaking their text.
func Render(w http.ResponseWriter, r *http.Request, err error) {
	var e *Error
	if !errors.As(err, &e) {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Code: ErrCodeInternal, Message: "internal error"})
		return
	}
	render.Status(r, e.HTTPStatusCode())
	render.JSON(w, r, ErrorResponse{Code: e.Code, Message: e.Message, Details: e.Details})
}

// BadRequest keeps structured errors as they are and reports anything else,
// typically a body that failed to decode, as invalid input.
func BadRequest(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Wrap(err, ErrCodeInvalidInput, "invalid request body")
}
