package cipher

import (
	"errors"
	"fmt"
)

// Error codes.
const (
	ErrCodePlayerJSNotFound  = "PLAYER_JS_NOT_FOUND"
	ErrCodePlayerJSDownload  = "PLAYER_JS_DOWNLOAD_FAILED"
	ErrCodeDecipherFailed    = "SIGNATURE_DECIPHER_FAILED"
	ErrCodeJSExecutionFailed = "JS_EXECUTION_FAILED"
)

// Error is a structured cipher failure carrying a stable code and the
// operation that produced it.
type Error struct {
	Code string
	Op   string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Op)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

// IsNotFound reports whether err is a player.js lookup failure.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodePlayerJSNotFound
}

// IsJSError reports whether err came from JavaScript execution.
func IsJSError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeJSExecutionFailed
}
