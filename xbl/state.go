package xbl

import (
	"errors"
	"unsafe"
)

// State is the three-valued lifecycle of an XBL lock word, held in a
// 4-byte-aligned uint32 (the host futex requirement, spec.md §3).
type State uint32

const (
	// Unlocked means the request is complete and its result is readable.
	Unlocked State = iota
	// LockedNoWaiters means the request is in flight and the enclave
	// thread has not yet committed to a blocking wait.
	LockedNoWaiters
	// LockedWithWaiters means the enclave thread is (or is about to be)
	// blocked in a host futex wait; the worker must wake it on unlock.
	LockedWithWaiters
)

func (s State) String() string {
	switch s {
	case Unlocked:
		return "unlocked"
	case LockedNoWaiters:
		return "locked_no_waiters"
	case LockedWithWaiters:
		return "locked_with_waiters"
	default:
		return "invalid"
	}
}

// Compile-time assertion that uint32 is 4-byte aligned on this platform,
// matching the pattern other host-memory ABI structs in this retrieval
// pack use (e.g. uffdio_copy's size assertion): if this ever failed to
// hold, one of the expressions below would overflow a uint constant and
// the package would fail to compile.
const _ = uint(4 - unsafe.Alignof(uint32(0)))
const _ = uint(unsafe.Alignof(uint32(0)) - 4)

// errAgain is the sentinel a waitWaker.wait implementation returns for a
// benign race: the word's value no longer matches the expected value by
// the time the wait call observed it. XBL's Wait loop treats this as
// "retry the CAS", never as a failure.
var errAgain = errors.New("xbl: futex value mismatch (EAGAIN)")

// waitWaker is the host-futex abstraction a Lock dispatches wait/wake
// through; see xbl_linux.go and xbl_other.go for the two implementations.
type waitWaker interface {
	// wait blocks until addr's value changes from expect, or returns
	// errAgain immediately if it has already changed. Any other
	// non-nil error is fatal (spec.md §4.3 step 5, §7 "Fatal").
	wait(addr *uint32, expect uint32) error
	// wake releases at most one waiter blocked on addr.
	wake(addr *uint32)
}
