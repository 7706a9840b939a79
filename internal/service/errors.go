package service

import (
	"errors"
	"fmt"
)

// Stable error codes surfaced to API clients. A failed calculation always
// carries one of these instead of a partially populated result.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeDBNotConfigured = "DB_NOT_CONFIGURED"
)

// CodedError pairs a stable machine-readable code with a human message.
type CodedError struct {
	Code    string
	Message string
}

func (e *CodedError) Error() string {
	return e.Message
}

// Coded builds a CodedError with a formatted message.
func Coded(code, format string, args ...interface{}) error {
	return &CodedError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrorCode extracts the stable code from an error chain, defaulting to
// INTERNAL_ERROR for plain errors.
func ErrorCode(err error) string {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return "INTERNAL_ERROR"
}
