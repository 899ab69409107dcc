// Package apperr defines the error taxonomy shared by the domain
// services and mapped to HTTP statuses at the edge.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping and recovery decisions.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation is malformed input: missing name/email, bad email
	// shape, bad date formats.
	KindValidation
	// KindNotFound covers absent records and records not owned by the
	// wedding in scope.
	KindNotFound
	// KindConflict covers uniqueness violations (duplicate email, tag).
	KindConflict
	// KindLimitExceeded covers allowance and capacity ceilings.
	KindLimitExceeded
	// KindExpired covers tokens past expiry and events past their grace
	// window at issuance time.
	KindExpired
	// KindCredential is a token that matches no stored digest. It is
	// surfaced identically to KindNotFound so a caller cannot probe for
	// credential validity.
	KindCredential
)

// Stable error codes returned to callers.
const (
	CodeInvalidInput          = "INVALID_INPUT"
	CodeGuestAlreadyExists    = "GUEST_ALREADY_EXISTS"
	CodeGuestNotFound         = "GUEST_NOT_FOUND"
	CodeTableNotFound         = "TABLE_NOT_FOUND"
	CodeEventNotFound         = "EVENT_NOT_FOUND"
	CodeWeddingNotFound       = "WEDDING_NOT_FOUND"
	CodeSlugAlreadyExists     = "SLUG_ALREADY_EXISTS"
	CodeTagAlreadyExists      = "TAG_ALREADY_EXISTS"
	CodeTagNotFound           = "TAG_NOT_FOUND"
	CodeInvalidToken          = "INVALID_TOKEN"
	CodeEventExpired          = "EVENT_EXPIRED"
	CodeFeatureDisabled       = "FEATURE_DISABLED"
	CodePlusOneLimitExceeded  = "PLUS_ONE_LIMIT_EXCEEDED"
	CodeInvalidMealOption     = "INVALID_MEAL_OPTION"
	CodeTableCapacityExceeded = "TABLE_CAPACITY_EXCEEDED"
)

// Error is a classified domain error with a stable code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	wrapped error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.wrapped }

// Is lets errors.Is match two apperr values by code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// Wrap attaches an underlying cause.
func (e *Error) Wrap(err error) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: e.Message, wrapped: err}
}

func newf(kind Kind, code, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a KindValidation error.
func Validation(code, format string, args ...interface{}) *Error {
	return newf(KindValidation, code, format, args...)
}

// NotFound creates a KindNotFound error.
func NotFound(code, format string, args ...interface{}) *Error {
	return newf(KindNotFound, code, format, args...)
}

// Conflict creates a KindConflict error.
func Conflict(code, format string, args ...interface{}) *Error {
	return newf(KindConflict, code, format, args...)
}

// LimitExceeded creates a KindLimitExceeded error.
func LimitExceeded(code, format string, args ...interface{}) *Error {
	return newf(KindLimitExceeded, code, format, args...)
}

// Expired creates a KindExpired error.
func Expired(code, format string, args ...interface{}) *Error {
	return newf(KindExpired, code, format, args...)
}

// Credential creates a KindCredential error.
func Credential(code, format string, args ...interface{}) *Error {
	return newf(KindCredential, code, format, args...)
}

// KindOf returns the kind of err, or KindUnknown for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// CodeOf returns the stable code of err, or "" for unclassified errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	return CodeOf(err) == code
}
