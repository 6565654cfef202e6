// Package xbl implements the Adaptive Cross-Boundary Lock (XBL): a
// three-state spin-then-futex mutex designed per "Futexes Are Tricky"
// (Ulrich Drepper, Mutex 2), adapted so the wait step is a host syscall
// executed from the enclave side and the wake step is performed by an
// untrusted worker thread on the other side of the trust boundary.
//
// A Lock's word is read and written only through sync/atomic, on a field
// whose address is what a Linux FUTEX_WAIT/FUTEX_WAKE pair operates on
// directly; see xbl_linux.go. Platforms without a public futex syscall
// fall back to an emulated wait/wake bucket grounded on the same approach
// taken by the twmb/dash futex package (addr-keyed wait queues protected
// by a mutex, checking the expected value before registering the wait so
// no wakeup is ever missed); see xbl_other.go.
package xbl
