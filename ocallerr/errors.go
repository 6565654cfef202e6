// Package ocallerr defines the small error taxonomy that every OCALL in this
// module surfaces, per the "no exceptions cross the boundary" propagation
// policy: every failure is a negative Code, and the Go error wrapping it
// never needs to leave the process that produced it.
package ocallerr

import (
	"errors"
	"fmt"
)

// Code is a small, negative-on-error result, the Go analogue of the
// original integer OCALL return value. Zero or positive values are
// operation-specific successes (a file descriptor, a byte count); negative
// values classify the failure.
type Code int32

const (
	// OK is the zero result code; never wrapped in an Error.
	OK Code = 0

	// EPERM and EACCES are the permission/isolation class: USA exhaustion,
	// a straddling pointer, a BMC copy rejection, a forged descriptor
	// pointer, or an unexpected host-returned size.
	EPERM  Code = -1
	EACCES Code = -2

	// EINVAL is the invalid-argument class, e.g. munmap_untrusted of a
	// region that isn't entirely outside the enclave, or futex given an
	// in-enclave futex word.
	EINVAL Code = -3

	// EINTR and EAGAIN are retryable; callers that expect them (gettime's
	// internal retry loop, XBL's benign futex race) handle them without
	// surfacing an error to their own caller.
	EINTR  Code = -4
	EAGAIN Code = -5

	// EFAULT is the fatal class: a futex wait failing with anything other
	// than EAGAIN, or any other condition with no defined recovery.
	EFAULT Code = -6
)

// String renders the code the way a log line would want it.
func (c Code) String() string {
	switch c {
	case OK:
		return "OK"
	case EPERM:
		return "EPERM"
	case EACCES:
		return "EACCES"
	case EINVAL:
		return "EINVAL"
	case EINTR:
		return "EINTR"
	case EAGAIN:
		return "EAGAIN"
	case EFAULT:
		return "EFAULT"
	default:
		return fmt.Sprintf("Code(%d)", int32(c))
	}
}

// IsError reports whether c represents a failed OCALL.
func (c Code) IsError() bool { return c < OK }

// Error wraps a Code with the operation name it came from and, optionally,
// the underlying cause (a host-side error, a syscall failure, etc).
type Error struct {
	// Op names the OCALL or internal step that failed, e.g. "read",
	// "ustack.alloc", "xbl.wait".
	Op   string
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ocall: %s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("ocall: %s: %s", e.Op, e.Code)
}

// Unwrap enables errors.Is/errors.As against the wrapped cause.
func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with no underlying cause.
func New(op string, code Code) *Error {
	return &Error{Op: op, Code: code}
}

// Wrap builds an Error around an underlying cause.
func Wrap(op string, code Code, err error) *Error {
	return &Error{Op: op, Code: code, Err: err}
}

// CodeOf extracts the Code from err, defaulting to EFAULT for any error
// that didn't originate from this package (an unclassified failure is
// treated as fatal, never as something worth retrying).
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return EFAULT
}

// IsRetryable reports whether err is EINTR or EAGAIN.
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case EINTR, EAGAIN:
		return true
	default:
		return false
	}
}
