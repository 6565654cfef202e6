//go:build linux

package hostsim

import (
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// sysCpuid fabricates register values: real CPUID needs inline assembly
// this module has no business shipping, so a fixed, clearly-synthetic
// vendor string ("GoOcallSim  ") is returned for leaf 0 and zeroes
// otherwise, enough to exercise the OCALL's marshaling without pretending
// to be a real CPU.
func sysCpuid(leaf, subleaf uint32) (eax, ebx, ecx, edx uint32) {
	if leaf == 0 {
		return 1, 0x634f6f47, 0x20206d69, 0x536c6c61 // "GoOc" in ebx, "allS" in edx, "im  " in ecx
	}
	return 0, 0, 0, 0
}

// sysCloneThread and sysResumeThread are scheduling stubs: this module
// does not implement enclave-thread scheduling (see Non-goals), so these
// just vend monotonically increasing synthetic thread ids.
func (s *Simulator) sysCloneThread(tcsAddr uintptr) int32 {
	return int32(s.nextTID.Add(1))
}

func (s *Simulator) sysResumeThread(tid int32) int32 {
	return 0
}

func (s *Simulator) sysCreateProcess(args string) int32 {
	return int32(s.nextTID.Add(1))
}

func sysFutex(addr *uint32, op int32, val uint32, timeoutNs int64) int32 {
	var ts *unix.Timespec
	if timeoutNs > 0 {
		t := unix.NsecToTimespec(timeoutNs)
		ts = &t
	}
	_, _, errno := unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		uintptr(op),
		uintptr(val),
		uintptr(unsafe.Pointer(ts)),
		0, 0,
	)
	if errno != 0 {
		return -int32(errno)
	}
	return 0
}

func sysGettime() (seconds, nanoseconds int64) {
	now := time.Now()
	return now.Unix(), int64(now.Nanosecond())
}

func sysSleep(requestedUs int64) (remainingUs int64) {
	time.Sleep(time.Duration(requestedUs) * time.Microsecond)
	return 0
}

func sysPoll(fds []unixPollEntry, timeoutMs int32) (int, error) {
	raw := make([]unix.PollFd, len(fds))
	for i, e := range fds {
		raw[i] = unix.PollFd{Fd: e.FD, Events: e.Events}
	}
	n, err := unix.Poll(raw, int(timeoutMs))
	if err != nil {
		return 0, err
	}
	for i := range raw {
		fds[i].Revents = raw[i].Revents
	}
	return n, nil
}

// unixPollEntry mirrors ocall.PollFDEntry's field layout without importing
// ocall here, keeping this file's syscall plumbing independent of the
// Gateway's argument-struct package; dispatcher.go converts between them.
type unixPollEntry struct {
	FD      int32
	Events  int16
	Revents int16
}

func sysEventfd(initVal uint32, flags int32) (int32, error) {
	fd, err := unix.Eventfd(uint(initVal), int(flags))
	if err != nil {
		return -1, err
	}
	return int32(fd), nil
}
