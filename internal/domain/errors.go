package domain

import (
	"errors"
	"fmt"
)

// Code classifies an Error.
type Code string

const (
	// CodeIOFailure covers local file and cache read/write failures.
	CodeIOFailure Code = "io_failure"
	// CodeBadResponse means the remote response matched no expected shape.
	// The protocol is assumed broken rather than transient; never retried.
	CodeBadResponse Code = "bad_response"
	// CodeAuthenticationFailed means the credentials were rejected, or the
	// forced re-login during an upload failed.
	CodeAuthenticationFailed Code = "authentication_failed"
	// CodeInvalidInput means a caller-supplied argument is malformed.
	CodeInvalidInput Code = "invalid_input"
)

// Error is the taxonomy error carried across package boundaries.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		if e.Err != nil {
			return e.Message + ": " + e.Err.Error()
		}
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError returns a coded error with no cause.
func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError returns a coded error wrapping a cause.
func WrapError(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// IsCode reports whether err (or anything it wraps) carries the given code.
func IsCode(err error, code Code) bool {
	var typed *Error
	if !errors.As(err, &typed) {
		return false
	}
	return typed.Code == code
}

// ChallengeRequiredError is not a failure: it is the control signal raised
// when an upload's login step suspends on a pin challenge. Callers are
// expected to present the artifact to a human and re-invoke login with the
// solution.
type ChallengeRequiredError struct {
	ArtifactPath string
}

func (e *ChallengeRequiredError) Error() string {
	return fmt.Sprintf("login requires a pin challenge, image at %s", e.ArtifactPath)
}
