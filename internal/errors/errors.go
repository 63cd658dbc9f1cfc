// Package errors defines structured error types for the dataset store and renderer.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies an error by what the caller did wrong.
type Kind int

const (
	// KindConfig is a dataset root or version directory problem at construction.
	KindConfig Kind = iota + 1
	// KindNotFound is a missing table, table file, token or keyframe.
	KindNotFound
	// KindPrecondition is a request the input record does not allow.
	KindPrecondition
	// KindDecode is malformed data coming from disk.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindNotFound:
		return "not found"
	case KindPrecondition:
		return "precondition"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// ErrorCode defines the specific cause inside a Kind.
type ErrorCode string

const (
	// ErrVersionNotFound is returned when <root>/<version> does not exist
	ErrVersionNotFound ErrorCode = "VERSION_NOT_FOUND"

	// ErrUnknownTable is returned for a table name outside the schema
	ErrUnknownTable ErrorCode = "UNKNOWN_TABLE"
	// ErrTableFileNotFound is returned when a table's JSON file is missing
	ErrTableFileNotFound ErrorCode = "TABLE_FILE_NOT_FOUND"
	// ErrTokenNotFound is returned when a token is absent from a table
	ErrTokenNotFound ErrorCode = "TOKEN_NOT_FOUND"
	// ErrKeyFrameNotFound is returned when a sample has no keyframe for a modality
	ErrKeyFrameNotFound ErrorCode = "KEYFRAME_NOT_FOUND"
	// ErrColorNotFound is returned when a category has no color assigned
	ErrColorNotFound ErrorCode = "COLOR_NOT_FOUND"

	// ErrNotCamera is returned when rendering a non-image sample_data
	ErrNotCamera ErrorCode = "NOT_CAMERA"
	// ErrNotKeyFrame is returned when annotations are requested on a non-keyframe
	ErrNotKeyFrame ErrorCode = "NOT_KEYFRAME"

	// ErrMalformedTable is returned when a table file is not a JSON array of records
	ErrMalformedTable ErrorCode = "MALFORMED_TABLE"
	// ErrDuplicateToken is returned when two rows of a table share a token
	ErrDuplicateToken ErrorCode = "DUPLICATE_TOKEN"
	// ErrMalformedMask is returned when an RLE payload cannot be decoded
	ErrMalformedMask ErrorCode = "MALFORMED_MASK"
	// ErrMaskSizeMismatch is returned when a mask does not cover its image
	ErrMaskSizeMismatch ErrorCode = "MASK_SIZE_MISMATCH"
	// ErrImageDecode is returned when an image file cannot be opened or decoded
	ErrImageDecode ErrorCode = "IMAGE_DECODE"
)

// Error is a concrete error type with kind, code, and optional details.
type Error struct {
	kind       Kind
	code       ErrorCode
	message    string
	details    map[string]any
	wrappedErr error
}

// New creates a new Error with the given kind, code and message.
func New(kind Kind, code ErrorCode, message string) *Error {
	return &Error{
		kind:    kind,
		code:    code,
		message: message,
	}
}

// WithDetail adds a single detail to the error.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.details == nil {
		e.details = make(map[string]any)
	}
	e.details[key] = value
	return e
}

// Wrap wraps an underlying error.
func (e *Error) Wrap(err error) *Error {
	e.wrappedErr = err
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.wrappedErr != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrappedErr)
	}
	return e.message
}

// Kind returns the error kind.
func (e *Error) Kind() Kind {
	return e.kind
}

// Code returns the error code.
func (e *Error) Code() ErrorCode {
	return e.code
}

// Details returns additional error details.
func (e *Error) Details() map[string]any {
	return e.details
}

// Unwrap returns the wrapped error if any.
func (e *Error) Unwrap() error {
	return e.wrappedErr
}

// Predefined error constructors for common cases

// Config creates a configuration error.
func Config(code ErrorCode, format string, args ...any) *Error {
	return New(KindConfig, code, fmt.Sprintf(format, args...))
}

// NotFound creates a not found error.
func NotFound(code ErrorCode, format string, args ...any) *Error {
	return New(KindNotFound, code, fmt.Sprintf(format, args...))
}

// Precondition creates a precondition error.
func Precondition(code ErrorCode, format string, args ...any) *Error {
	return New(KindPrecondition, code, fmt.Sprintf(format, args...))
}

// Decode creates a decode error.
func Decode(code ErrorCode, format string, args ...any) *Error {
	return New(KindDecode, code, fmt.Sprintf(format, args...))
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.kind
	}
	return 0
}

// CodeOf returns the ErrorCode of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.code
	}
	return ""
}

// IsConfig reports whether err is a configuration error.
func IsConfig(err error) bool { return KindOf(err) == KindConfig }

// IsNotFound reports whether err is a not found error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsPrecondition reports whether err is a precondition error.
func IsPrecondition(err error) bool { return KindOf(err) == KindPrecondition }

// IsDecode reports whether err is a decode error.
func IsDecode(err error) bool { return KindOf(err) == KindDecode }
