package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// Common errors
var (
	// 400 Bad Request
	ErrBadRequest         = New(http.StatusBadRequest, "malformed request")
	ErrInvalidCode        = New(http.StatusBadRequest, "room code must be exactly 16 alphanumeric characters")
	ErrInvalidMessageType = New(http.StatusBadRequest, "invalid message type")
	ErrEmptyContent       = New(http.StatusBadRequest, "message content must not be empty")
	ErrMissingMetadata    = New(http.StatusBadRequest, "file messages require attachment metadata")

	// 404 Not Found
	ErrNotFound     = New(http.StatusNotFound, "resource not found")
	ErrRoomNotFound = New(http.StatusNotFound, "room not found or expired")

	// 413 Payload Too Large
	ErrPayloadTooLarge = New(http.StatusRequestEntityTooLarge, "attachment exceeds the 5MB limit")

	// 429 Too Many Requests
	ErrTooManyRequests = New(http.StatusTooManyRequests, "too many requests, slow down")

	// 500 Internal Server Error
	ErrInternal       = New(http.StatusInternalServerError, "internal server error")
	ErrStorageFailure = New(http.StatusInternalServerError, "storage failure, please retry")
)

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// GetHTTPStatus returns the HTTP status code for an error
func GetHTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// GetMessage returns the error message
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}
