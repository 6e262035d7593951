package apperrors

import (
	stderrors "errors"
	"fmt"
)

type Code string

const (
	CodeNotFound         Code = "NOT_FOUND"
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeInternal         Code = "INTERNAL_ERROR"
)

// AppError is the error type returned by the service layer. Every AppError is
// recoverable; transports translate Code into their own status space.
type AppError struct {
	Code    Code
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code Code, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(err error, code Code, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func NotFound(kind, id string) *AppError {
	return New(CodeNotFound, "%s %q not found", kind, id)
}

func Validation(format string, args ...interface{}) *AppError {
	return New(CodeValidationFailed, format, args...)
}

func PermissionDenied(format string, args ...interface{}) *AppError {
	return New(CodePermissionDenied, format, args...)
}

func Internal(err error) *AppError {
	return Wrap(err, CodeInternal, "internal error")
}

// CodeOf returns the code of the first AppError in err's chain, or
// CodeInternal when there is none.
func CodeOf(err error) Code {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

func IsNotFound(err error) bool {
	return err != nil && CodeOf(err) == CodeNotFound
}

func IsValidation(err error) bool {
	return err != nil && CodeOf(err) == CodeValidationFailed
}

func IsPermissionDenied(err error) bool {
	return err != nil && CodeOf(err) == CodePermissionDenied
}
