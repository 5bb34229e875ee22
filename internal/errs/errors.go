// Package errs provides the unified error type used across all of tablescope.
//
// Every subsystem (backend client, bridge, session controllers, filestore, …)
// wraps its native errors into *errs.Error before returning them to callers.
// Callers use the Is* predicates to decide what to show the user without
// importing net/http, encoding/json or SDK packages.
//
// Usage:
//
//	// In the backend client, wrap transport errors:
//	return errs.Wrap(errs.ErrKindTransport, "connect request failed", err)
//
//	// In a page, pick the notice:
//	if errs.IsCancelled(err) {
//	    return noticeNoFile
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing subsystem-specific codes.
type ErrKind int

const (
	ErrKindUnknown          ErrKind = iota
	ErrKindCancelled                // user dismissed a dialog or cancelled the context
	ErrKindInvalidInput             // bad arguments from the caller (wrong extension, bad index)
	ErrKindTransport                // backend unreachable or answered with a non-2xx status
	ErrKindTimeout                  // request exceeded its deadline
	ErrKindDecode                   // backend answered with a body we could not read
	ErrKindBackend                  // backend answered but reported failure
	ErrKindBusy                     // same operation already in flight
	ErrKindStale                    // response superseded by a newer request
	ErrKindNotFound                 // no such object, page or table
	ErrKindPermissionDenied         // access denied by the object store
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindCancelled:
		return "cancelled"
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindTransport:
		return "transport"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindDecode:
		return "decode"
	case ErrKindBackend:
		return "backend"
	case ErrKindBusy:
		return "busy"
	case ErrKindStale:
		return "stale"
	case ErrKindNotFound:
		return "not_found"
	case ErrKindPermissionDenied:
		return "permission_denied"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all tablescope subsystems.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error // original error, preserved for logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf creates an *Error with a formatted message.
func Newf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// --- Predicates ---

// IsCancelled reports whether err is a user or context cancellation.
func IsCancelled(err error) bool {
	return KindOf(err) == ErrKindCancelled
}

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return KindOf(err) == ErrKindInvalidInput
}

// IsTransport reports whether err is a network failure or non-2xx response.
func IsTransport(err error) bool {
	return KindOf(err) == ErrKindTransport
}

// IsTimeout reports whether err was caused by a deadline.
func IsTimeout(err error) bool {
	return KindOf(err) == ErrKindTimeout
}

// IsDecode reports whether err is an unreadable response body.
func IsDecode(err error) bool {
	return KindOf(err) == ErrKindDecode
}

// IsBackend reports whether err is a failure reported by the backend itself.
func IsBackend(err error) bool {
	return KindOf(err) == ErrKindBackend
}

// IsBusy reports whether err was returned because the operation is already running.
func IsBusy(err error) bool {
	return KindOf(err) == ErrKindBusy
}

// IsStale reports whether err marks a response that arrived after a newer request.
func IsStale(err error) bool {
	return KindOf(err) == ErrKindStale
}

// IsNotFound reports whether err represents a missing object, page or table.
func IsNotFound(err error) bool {
	return KindOf(err) == ErrKindNotFound
}

// IsPermissionDenied reports whether err is an access control failure.
func IsPermissionDenied(err error) bool {
	return KindOf(err) == ErrKindPermissionDenied
}

// IsRetryable reports whether repeating the same request may succeed.
// Only transport failures and timeouts qualify.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case ErrKindTransport, ErrKindTimeout:
		return true
	default:
		return false
	}
}

// KindOf extracts the ErrKind from any error in the chain.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
