// Package errors provides structured error handling for isis
package errors

import (
	"errors"
	"fmt"
	"runtime"

	stringpool "github.com/isis-group/isis-sub000/pkg/strings"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeUnknownConversion means no converter exists for a pair of types
	ErrorTypeUnknownConversion ErrorType = "unknown_conversion"
	// ErrorTypePositiveOverflow means a value is too high for the destination
	ErrorTypePositiveOverflow ErrorType = "positive_overflow"
	// ErrorTypeNegativeOverflow means a value is too low for the destination
	ErrorTypeNegativeOverflow ErrorType = "negative_overflow"
	// ErrorTypeEmptyArray means an operation needs at least one element
	ErrorTypeEmptyArray ErrorType = "empty_array"
	// ErrorTypeAllValuesExcluded means a scan skipped every element
	ErrorTypeAllValuesExcluded ErrorType = "all_values_excluded"
	// ErrorTypeParse represents text that could not be interpreted
	ErrorTypeParse ErrorType = "parse"
	// ErrorTypeUnsupported represents operations a type does not provide
	ErrorTypeUnsupported ErrorType = "unsupported"
	// ErrorTypeRange represents out of bounds indices
	ErrorTypeRange ErrorType = "range"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeFile represents file operation errors
	ErrorTypeFile ErrorType = "file"
	// ErrorTypeInternal represents internal errors
	ErrorTypeInternal ErrorType = "internal"
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return stringpool.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return stringpool.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same type, so sentinel values like
// ErrUnknownConversion work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Message == "" && t.Type == e.Type
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Sentinels for errors.Is checks
var (
	ErrUnknownConversion = &Error{Type: ErrorTypeUnknownConversion}
	ErrPositiveOverflow  = &Error{Type: ErrorTypePositiveOverflow}
	ErrNegativeOverflow  = &Error{Type: ErrorTypeNegativeOverflow}
	ErrEmptyArray        = &Error{Type: ErrorTypeEmptyArray}
	ErrAllValuesExcluded = &Error{Type: ErrorTypeAllValuesExcluded}
	ErrParse             = &Error{Type: ErrorTypeParse}
)

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates a new error with a formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsType checks if the error is of the given type
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// captureStack captures the current call stack
func captureStack(skip int) []StackFrame {
	const maxFrames = 16
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
