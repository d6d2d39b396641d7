package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of domain error.
type Code string

const (
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeDuplicateKey       Code = "DUPLICATE_KEY"
	CodeNotFound           Code = "NOT_FOUND"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeInvalidToken       Code = "INVALID_TOKEN"
	CodeTokenExpired       Code = "TOKEN_EXPIRED"
	CodeInternal           Code = "INTERNAL_ERROR"
)

var (
	// ErrValidation matches any validation failure.
	ErrValidation = New(CodeValidation, "validation failed")
	// ErrDuplicateKey matches any unique-constraint violation.
	ErrDuplicateKey = New(CodeDuplicateKey, "duplicate key")
	// ErrNotFound matches any missing entity.
	ErrNotFound = New(CodeNotFound, "resource not found")
	// ErrInvalidCredentials is returned for every failed login, whatever the cause.
	ErrInvalidCredentials = New(CodeInvalidCredentials, "invalid email or password")
	// ErrInvalidToken is returned when a bearer token is malformed or badly signed.
	ErrInvalidToken = New(CodeInvalidToken, "invalid token")
	// ErrTokenExpired is returned when a bearer token is past its expiry.
	ErrTokenExpired = New(CodeTokenExpired, "token expired")
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError is a domain error carrying a code, a client-safe message and optional cause.
type AppError struct {
	Code    Code
	Message string
	Fields  []FieldError
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError with the same code, so that
// errors.Is(err, ErrNotFound) holds for every not-found error.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// New creates a new AppError.
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap wraps an existing error with an error code.
func Wrap(code Code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NotFound builds a not-found error with a domain message.
func NotFound(message string) *AppError {
	return New(CodeNotFound, message)
}

// Duplicate builds a duplicate-key error with a domain message.
func Duplicate(message string, err error) *AppError {
	return Wrap(CodeDuplicateKey, message, err)
}

// Validation builds a validation error with field details.
func Validation(message string, fields ...FieldError) *AppError {
	return &AppError{Code: CodeValidation, Message: message, Fields: fields}
}

// Internal wraps an unexpected failure.
func Internal(message string, err error) *AppError {
	return Wrap(CodeInternal, message, err)
}

// CodeOf returns the code of the first AppError in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   string       `json:"error"`
	Code    string       `json:"code"`
	Errors  []FieldError `json:"errors,omitempty"`
	Detail  string       `json:"detail,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Fields     []FieldError
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:  e.Message,
		Code:   e.Code,
		Errors: e.Fields,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything that is not a known
// AppError becomes a 500 with a generic message.
func MapErrorToHTTP(err error) *HTTPError {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return NewHTTPError(http.StatusInternalServerError, "internal server error", string(CodeInternal))
	}

	var status int
	switch appErr.Code {
	case CodeValidation, CodeDuplicateKey:
		status = http.StatusBadRequest
	case CodeNotFound:
		status = http.StatusNotFound
	case CodeInvalidCredentials, CodeInvalidToken, CodeTokenExpired:
		status = http.StatusUnauthorized
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", string(CodeInternal))
	}

	httpErr := NewHTTPError(status, appErr.Message, string(appErr.Code))
	httpErr.Fields = appErr.Fields
	return httpErr
}
