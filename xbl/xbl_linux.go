//go:build linux

package xbl

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// linuxFutex is the real wait/wake backend: a direct FUTEX_WAIT/FUTEX_WAKE
// syscall pair on the lock word's address. golang.org/x/sys/unix has no
// named futex wrapper, so this goes through Syscall6 directly, the same
// way the retrieval pack's eventloop poller reaches epoll primitives the
// package doesn't wrap.
type linuxFutex struct{}

func newBackend() waitWaker {
	return linuxFutex{}
}

func (linuxFutex) wait(addr *uint32, expect uint32) error {
	_, _, errno := unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		uintptr(unix.FUTEX_WAIT),
		uintptr(expect),
		0, 0, 0,
	)
	switch errno {
	case 0:
		return nil
	case unix.EAGAIN:
		// The word's value had already changed by the time the kernel
		// looked at it: a benign race, not a failure.
		return errAgain
	case unix.EINTR:
		// Treat a signal interruption the same as a benign race: the
		// caller's Wait loop will re-check the word and either succeed
		// immediately or wait again.
		return errAgain
	default:
		return errno
	}
}

func (linuxFutex) wake(addr *uint32) {
	_, _, _ = unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		uintptr(unix.FUTEX_WAKE),
		1, // wake at most one waiter
		0, 0, 0,
	)
}
