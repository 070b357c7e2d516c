package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable machine-readable error codes surfaced to API clients.
const (
	CodeNotFound            = "notFound"            // missing or soft-deleted entity
	CodeInvalidState        = "invalidState"        // entity exists but is not active
	CodeInvalidRequest      = "invalidRequest"      // malformed duration, off-grid slot, cross-business reference
	CodeProviderUnavailable = "providerUnavailable" // external calendar timeout or error
	CodeSignatureMismatch   = "signatureMismatch"   // webhook authentication failure
)

// AppError is the terminal per-request error carried across service
// boundaries.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

func NewNotFound(format string, args ...interface{}) error {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewInvalidState(format string, args ...interface{}) error {
	return &AppError{Code: CodeInvalidState, Message: fmt.Sprintf(format, args...)}
}

func NewInvalidRequest(format string, args ...interface{}) error {
	return &AppError{Code: CodeInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

func NewProviderUnavailable(msg string, cause error) error {
	return &AppError{Code: CodeProviderUnavailable, Message: msg, Cause: cause}
}

func NewSignatureMismatch() error {
	return &AppError{Code: CodeSignatureMismatch, Message: "webhook signature verification failed"}
}

// CodeOf extracts the machine-readable code from an error chain, or empty.
func CodeOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// HTTPStatus maps an error to the HTTP status the handlers respond with.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidState:
		return http.StatusConflict
	case CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeProviderUnavailable:
		return http.StatusBadGateway
	case CodeSignatureMismatch:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
