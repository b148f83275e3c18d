// Package apperr holds the error codes surfaced to API clients and their HTTP
// status mapping. Errors are built with oops so that callers can attach
// context without losing the code.
package apperr

import (
	"fmt"
	"net/http"

	"github.com/samber/oops"
)

const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeEmailTaken         = "EMAIL_TAKEN"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeInvalidResetToken  = "INVALID_RESET_TOKEN"
	CodeEmailDelivery      = "EMAIL_DELIVERY_FAILED"
	CodeNotFound           = "NOT_FOUND"
)

var statusByCode = map[string]int{
	CodeValidation:         http.StatusBadRequest,
	CodeEmailTaken:         http.StatusBadRequest,
	CodeUserNotFound:       http.StatusNotFound,
	CodeInvalidCredentials: http.StatusBadRequest,
	CodeUnauthorized:       http.StatusUnauthorized,
	CodeInvalidToken:       http.StatusUnauthorized,
	CodeInvalidResetToken:  http.StatusNotFound,
	CodeEmailDelivery:      http.StatusInternalServerError,
	CodeNotFound:           http.StatusNotFound,
}

// Validation reports malformed or missing input.
func Validation(format string, args ...any) error {
	return oops.Code(CodeValidation).Errorf(format, args...)
}

// New builds a coded error with a client-facing message.
func New(code, msg string) error {
	return oops.Code(code).Errorf("%s", msg)
}

// statusKey overrides the status table for a single error.
const statusKey = "http_status"

// NewWithStatus is New with a status that differs from the code's usual one.
func NewWithStatus(code string, status int, msg string) error {
	return oops.Code(code).With(statusKey, status).Errorf("%s", msg)
}

// Code returns the oops code carried by err, or "" for uncoded errors.
func Code(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code := oopsErr.Code()
	if code == nil {
		return ""
	}
	return fmt.Sprint(code)
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return err != nil && Code(err) == code
}

// Status maps err to an HTTP status. Unknown codes are internal errors.
func Status(err error) int {
	if oopsErr, ok := oops.AsOops(err); ok {
		if status, ok := oopsErr.Context()[statusKey].(int); ok {
			return status
		}
	}
	if status, ok := statusByCode[Code(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}
