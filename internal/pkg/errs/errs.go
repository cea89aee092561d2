/*
Package errs provides the application error type and its code table.

CustomError carries a numeric business code, a coarse Kind a client can branch on,
a stable message, the HTTP status it maps to, and optional structured detail
(the offending field and entity) so the message can be rebuilt on the client side.
*/
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"noticehub/internal/pkg/logx"
)

// Kind is the caller-distinguishable category of an error.
type Kind string

const (
	KindRequest        Kind = "request"
	KindValidation     Kind = "validation"
	KindConflict       Kind = "conflict"
	KindMissingToken   Kind = "missing_token"
	KindInvalidToken   Kind = "invalid_token"
	KindAuthentication Kind = "authentication"
	KindRateLimited    Kind = "rate_limited"
	KindInternal       Kind = "internal"
)

// CustomError is the error type used throughout the application.
type CustomError struct {
	// Code is the business error code (see constants definition).
	Code int

	// Kind is the error category.
	Kind Kind

	// Message is the client-facing description.
	Message string

	// Status is the HTTP status code corresponding to this error.
	Status int

	// Field names the offending input field, when there is one.
	Field string

	// Entity names the kind of record involved, e.g. "user".
	Entity string

	cause error
}

// Error implements the error interface.
func (e *CustomError) Error() string {
	msg := fmt.Sprintf("error %d (%s): %s", e.Code, e.Kind, e.Message)
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause, if any.
func (e *CustomError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a *CustomError with the same code, so
// errors.Is(err, errs.NewError(errs.ErrTokenExpired)) works through wrapping.
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	return ok && t.Code == e.Code
}

// WithField returns a copy of e naming the offending field.
func (e *CustomError) WithField(field string) *CustomError {
	c := *e
	c.Field = field
	return &c
}

// Wrap returns a copy of e that carries err as its cause.
func (e *CustomError) Wrap(err error) *CustomError {
	c := *e
	c.cause = err
	return &c
}

// NewError builds a *CustomError from the template registered for code.
// details are printf arguments for templates containing verbs; for ErrUnknown an
// error detail becomes the cause and is logged. Unregistered codes fall back to ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	templateErr, ok := errorMap[code]
	if !ok {
		logx.Error(
			fmt.Errorf("attempted to create an error with an unknown code in errorMap"),
			"Unknown error code requested",
			"requested_code", code,
		)
		unknown := errorMap[ErrUnknown]
		return &unknown
	}

	customErr := templateErr

	if customErr.Status == 0 {
		customErr.Status = http.StatusBadRequest
	}

	if code == ErrUnknown {
		if len(details) > 0 {
			if originalErr, ok := details[0].(error); ok {
				customErr.cause = originalErr
				logx.Error(originalErr, "Handling ErrUnknown with underlying error")
			}
		}
		return &customErr
	}

	if len(details) > 0 {
		if strings.Contains(customErr.Message, "%") {
			customErr.Message = fmt.Sprintf(customErr.Message, details...)
		} else {
			logx.Warn(
				"Details provided for error, but message template has no formatting placeholders. Details ignored.",
				"code", code,
			)
		}
	}

	return &customErr
}

// From converts any error into a *CustomError. Errors that are not application
// errors become ErrUnknown with err as the cause.
func From(err error) *CustomError {
	if err == nil {
		return nil
	}

	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr
	}

	return NewError(ErrUnknown, err)
}

// KindOf returns the category of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr.Kind
	}
	return KindInternal
}

// IsCode reports whether err is, or wraps, an application error with the given code.
func IsCode(err error, code int) bool {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr.Code == code
	}
	return false
}
