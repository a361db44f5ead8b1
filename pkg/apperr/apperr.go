// Package apperr defines the application error taxonomy shared by services
// and handlers. Each kind carries a stable code and the HTTP status it maps
// to, so handlers never switch on error strings.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	KindPermission Kind = iota + 1
	KindAuthentication
	KindValidation
	KindNotFound
	KindInvalidTransition
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error // optional wrapped cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches errors of the same kind, so errors.Is(err, apperr.Permission("", ""))
// style sentinels work through wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// Status returns the HTTP status code this error maps to.
func (e *Error) Status() int {
	switch e.Kind {
	case KindPermission:
		return http.StatusForbidden
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidTransition:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Permission builds a permission-denied error.
func Permission(code, format string, args ...interface{}) *Error {
	return &Error{Kind: KindPermission, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Authentication builds an authentication-failure error.
func Authentication(code, format string, args ...interface{}) *Error {
	return &Error{Kind: KindAuthentication, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Validation builds an invalid-input error naming the offending field.
func Validation(code, format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a missing-entity error.
func NotFound(code, format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: fmt.Sprintf(format, args...)}
}

// InvalidTransition builds an illegal-state-transition error.
func InvalidTransition(code, format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidTransition, Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsPermission reports whether err is (or wraps) a permission error.
func IsPermission(err error) bool { return isKind(err, KindPermission) }

// IsAuthentication reports whether err is (or wraps) an authentication error.
func IsAuthentication(err error) bool { return isKind(err, KindAuthentication) }

// IsValidation reports whether err is (or wraps) a validation error.
func IsValidation(err error) bool { return isKind(err, KindValidation) }

// IsNotFound reports whether err is (or wraps) a not-found error.
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

// IsInvalidTransition reports whether err is (or wraps) an invalid-transition error.
func IsInvalidTransition(err error) bool { return isKind(err, KindInvalidTransition) }

func isKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// StatusOf returns the HTTP status for err, defaulting to 500 for
// unclassified errors.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status()
	}
	return http.StatusInternalServerError
}

// CodeOf returns the stable code for err, or "INTERNAL" when unclassified.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Code != "" {
		return e.Code
	}
	return "INTERNAL"
}
