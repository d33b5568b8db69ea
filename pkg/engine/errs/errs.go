// Package errs defines the error kinds reported by the resource managers.
//
// Every workflow failure is one of a small set of kinds so the command layer can print a
// user-facing message and choose an exit code without inspecting SDK types.
package errs

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// Error kinds. Match them with errors.Is.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrAccessDenied  = errors.New("access denied")
	ErrQuotaExceeded = errors.New("quota exceeded")
	ErrPolicy        = errors.New("blocked by policy")
	ErrAborted       = errors.New("aborted by operator")
)

// Error is a user-facing failure of a known kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

// New builds an Error of the given kind.
func New(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error { return New(ErrValidation, format, args...) }

func NotFound(format string, args ...any) error { return New(ErrNotFound, format, args...) }

func AccessDenied(format string, args ...any) error { return New(ErrAccessDenied, format, args...) }

// RemoteError wraps a failed AWS API call.
type RemoteError struct {
	Op      string
	Code    string
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("AWS Error: %s failed (%s): %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("AWS Error: %s failed: %s", e.Op, e.Message)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Remote converts an SDK error into a RemoteError. A nil error stays nil.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	var already *RemoteError
	if errors.As(err, &already) {
		return err
	}

	re := &RemoteError{Op: op, Message: err.Error(), Err: err}
	var opErr *smithy.OperationError
	if errors.As(err, &opErr) && re.Op == "" {
		re.Op = opErr.Operation()
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		re.Code = apiErr.ErrorCode()
		re.Message = apiErr.ErrorMessage()
		if re.Message == "" {
			re.Message = apiErr.Error()
		}
	}
	return re
}

// Code returns the AWS error code carried by err, or "".
func Code(err error) string {
	var re *RemoteError
	if errors.As(err, &re) && re.Code != "" {
		return re.Code
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// ExitCode maps an error kind to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, ErrAborted):
		return 0
	case errors.Is(err, ErrValidation):
		return 2
	case errors.Is(err, ErrNotFound):
		return 3
	case errors.Is(err, ErrAccessDenied):
		return 4
	case errors.Is(err, ErrQuotaExceeded):
		return 5
	case errors.Is(err, ErrPolicy):
		return 6
	default:
		return 1
	}
}
