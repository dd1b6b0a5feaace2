// Package errs defines the typed error kinds produced during resolution.
package errs

import (
	"errors"
)

// Kind identifies a resolution failure category. The string values are the
// wire-level identifiers consumed by downstream stages.
type Kind string

const (
	// KindDecipher indicates a signature/decipher algorithm failure.
	KindDecipher Kind = "youtube.decipher"
	// KindTokenExpired indicates the stored refresh token no longer works.
	KindTokenExpired Kind = "youtube.token_expired"
	// KindLogin indicates the upstream demands an authenticated session.
	KindLogin Kind = "youtube.login"
	// KindVideoAge indicates the video is age restricted.
	KindVideoAge Kind = "content.video.age"
	// KindVideoPrivate indicates the video is private.
	KindVideoPrivate Kind = "content.video.private"
	// KindVideoUnavailable indicates the video cannot be accessed.
	KindVideoUnavailable Kind = "content.video.unavailable"
	// KindVideoRegion indicates the video is not playable in this region.
	KindVideoRegion Kind = "content.video.region"
	// KindVideoLive indicates the video is an ongoing live broadcast.
	KindVideoLive Kind = "content.video.live"
	// KindTooLong indicates the video exceeds the configured duration limit.
	KindTooLong Kind = "content.too_long"
	// KindFetchRate indicates upstream throttling or rate limiting.
	KindFetchRate Kind = "fetch.rate"
	// KindFetchEmpty indicates no usable stream variants were found.
	KindFetchEmpty Kind = "fetch.empty"
	// KindFetchFail indicates a transient or unknown fetch failure.
	KindFetchFail Kind = "fetch.fail"
)

// Error is a typed resolution error. Critical marks an integrity violation
// (e.g. the upstream served a stub for an unrelated video) that callers must
// not treat as an ordinary miss.
type Error struct {
	Kind     Kind
	Critical bool
	cause    error
}

// New returns a typed error for the given kind.
func New(kind Kind) *Error {
	return &Error{Kind: kind}
}

// NewCritical returns a typed error flagged as critical.
func NewCritical(kind Kind) *Error {
	return &Error{Kind: kind, Critical: true}
}

// Wrap attaches a cause to a typed error.
func Wrap(kind Kind, cause error) *Error {
	return &Error{Kind: kind, cause: cause}
}

// WrapCritical attaches a cause to a typed error flagged as critical.
func WrapCritical(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Critical: true, cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return string(e.Kind) + ": " + e.cause.Error()
	}
	return string(e.Kind)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is a typed error with the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf extracts the kind from an error chain. The second return value is
// false when the chain carries no typed error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsCritical reports whether the error chain carries a critical typed error.
func IsCritical(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Critical
}
