package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindForbidden  ErrorKind = "forbidden"
	KindExternal   ErrorKind = "external"
	KindUnexpected ErrorKind = "unexpected"
)

// AppError carries the HTTP status and the client-facing message.
// Err is the cause and is never shown to the client.
type AppError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func NewValidationError(message string) error {
	return &AppError{Kind: KindValidation, Status: http.StatusBadRequest, Message: message}
}

func NewNotFoundError(message string) error {
	return &AppError{Kind: KindNotFound, Status: http.StatusNotFound, Message: message}
}

func NewForbiddenError(message string) error {
	return &AppError{Kind: KindForbidden, Status: http.StatusForbidden, Message: message}
}

// payment gateway unreachable or misconfigured
func NewExternalError(message string, err error) error {
	return &AppError{Kind: KindExternal, Status: http.StatusInternalServerError, Message: message, Err: err}
}

// webhook payload that failed signature verification
func NewSignatureError(err error) error {
	return &AppError{Kind: KindExternal, Status: http.StatusBadRequest, Message: "webhook signature verification failed", Err: err}
}

func NewUnexpectedError(err error) error {
	return &AppError{Kind: KindUnexpected, Status: http.StatusInternalServerError, Message: "internal server error", Err: err}
}

func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	ok := errors.As(err, &ae)
	return ae, ok
}

// IsKind reports whether err is an AppError of kind k.
func IsKind(err error, k ErrorKind) bool {
	ae, ok := AsAppError(err)
	return ok && ae.Kind == k
}

// keeps an AppError raised inside a transaction, wraps anything else
func asUsecaseError(err error) error {
	if _, ok := AsAppError(err); ok {
		return err
	}
	return NewUnexpectedError(err)
}
