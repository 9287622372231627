package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
)

// ForgeError is an error carrying an ErrorCode, a message, optional
// key/value context and the underlying cause.
type ForgeError struct {
	// Code classifies the failure.
	Code ErrorCode

	// Message is a human readable description of the failure.
	Message string

	// Context holds structured details such as the project or train involved.
	Context map[string]interface{}

	// Cause is the wrapped error, if any.
	Cause error
}

// Error implements the error interface.
func (e *ForgeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Cause != nil {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the wrapped cause.
func (e *ForgeError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a ForgeError with the same code.
// A target without a message matches on code alone.
func (e *ForgeError) Is(target error) bool {
	t, ok := target.(*ForgeError)
	if !ok {
		return false
	}
	if t.Code != e.Code {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// New creates a ForgeError with the given code and message.
func New(code ErrorCode, message string) error {
	return &ForgeError{Code: code, Message: message}
}

// Newf creates a ForgeError with the given code and a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) error {
	return &ForgeError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err with a code and message. It returns nil if err is nil.
func Wrap(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	return &ForgeError{Code: code, Message: message, Cause: err}
}

// WrapWithContext wraps err with a code, message and structured context.
// It returns nil if err is nil.
func WrapWithContext(err error, code ErrorCode, message string, ctx map[string]interface{}) error {
	if err == nil {
		return nil
	}
	return &ForgeError{Code: code, Message: message, Context: ctx, Cause: err}
}

// Code returns a sentinel usable with errors.Is to test for a code.
//
//	if errors.Is(err, errors.Code(errors.CodeInvalidConfig)) { ... }
func Code(code ErrorCode) error {
	return &ForgeError{Code: code}
}

// CodeOf returns the code of the outermost ForgeError in err's chain,
// or CodeUnknown when there is none.
func CodeOf(err error) ErrorCode {
	var fe *ForgeError
	if stderrors.As(err, &fe) {
		return fe.Code
	}
	return CodeUnknown
}

// HasCode reports whether any ForgeError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	return stderrors.Is(err, Code(code))
}

// ContextOf returns the structured context of the outermost ForgeError in err's chain.
func ContextOf(err error) map[string]interface{} {
	var fe *ForgeError
	if stderrors.As(err, &fe) {
		return fe.Context
	}
	return nil
}

// IsRetryable reports whether err is classified as transient.
// Canceled contexts are never retryable; exceeded deadlines are.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) {
		return false
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var fe *ForgeError
	for e := err; stderrors.As(e, &fe); e = fe.Cause {
		if fe.Code.Retryable() {
			return true
		}
	}
	return false
}

// Is is errors.Is from the standard library.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As is errors.As from the standard library.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// Join is errors.Join from the standard library.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}
