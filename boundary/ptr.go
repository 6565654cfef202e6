package boundary

import "unsafe"

// HostPtr is an opaque reference to a byte range in host memory. Values are
// only produced by ustack.Stack allocations, CopyPtrToEnclave, or a
// HostDispatcher result that has already
// passed a Checker classification. The zero value is the null host
// pointer USA allocation failure returns.
//
// The type parameter carries no runtime information; it exists purely so
// that, for example, a HostPtr[StatArgs] can't be passed to a function
// expecting a HostPtr[ReadArgs] without an explicit conversion.
type HostPtr[T any] struct {
	ptr  unsafe.Pointer
	size int
}

// NewHostPtr wraps a raw host-memory address. Callers outside this module
// should only ever obtain the unsafe.Pointer from ustack or a
// HostDispatcher, never synthesize one.
func NewHostPtr[T any](p unsafe.Pointer, size int) HostPtr[T] { return HostPtr[T]{ptr: p, size: size} }

// Addr returns the numeric address, valid only for the instant it's read.
func (p HostPtr[T]) Addr() uintptr { return uintptr(p.ptr) }

// Len returns the byte length of the region the pointer refers to.
func (p HostPtr[T]) Len() int { return p.size }

// IsNil reports the null host pointer USA exhaustion produces.
func (p HostPtr[T]) IsNil() bool { return p.ptr == nil }

// Pointer exposes the underlying address for overlaying a typed argument
// struct onto the host-memory bytes it refers to. Reserved for the
// Gateway's own args marshaling; code outside this module's trust
// boundary layer should prefer Addr/Len plus a Checker copy.
func (p HostPtr[T]) Pointer() unsafe.Pointer { return p.ptr }

// Cast reinterprets the pointer as referring to a different argument
// struct shape, for codepaths that build a struct and then exchange it
// (the direct-exit OCALL ABI is "one code, one pointer", so every OCALL's
// argument struct crosses as the same underlying HostPtr[unsafe.Pointer]
// shape).
func Cast[U, T any](p HostPtr[T]) HostPtr[U] { return HostPtr[U]{ptr: p.ptr, size: p.size} }

// EnclavePtr is the enclave-memory analogue of HostPtr. Enclave buffers are
// ordinary Go-managed memory; EnclavePtr exists to prevent a HostPtr and an
// EnclavePtr from being confused at a call site, which is the central
// isolation bug class this package exists to rule out.
type EnclavePtr[T any] struct {
	ptr  unsafe.Pointer
	size int
}

// NewEnclavePtr wraps the address of enclave-resident memory, typically
// &slice[0] or unsafe.Pointer(&value).
func NewEnclavePtr[T any](p unsafe.Pointer, size int) EnclavePtr[T] {
	return EnclavePtr[T]{ptr: p, size: size}
}

// EnclavePtrFromBytes is a convenience for the common case of an enclave
// buffer expressed as a []byte.
func EnclavePtrFromBytes(b []byte) EnclavePtr[byte] {
	if len(b) == 0 {
		return EnclavePtr[byte]{}
	}
	return EnclavePtr[byte]{ptr: unsafe.Pointer(&b[0]), size: len(b)}
}

// HostPtrFromBytes is the HostPtr analogue, for host-side buffers already
// known (by construction, e.g. an mmap'd arena) to live in host memory.
func HostPtrFromBytes(b []byte) HostPtr[byte] {
	if len(b) == 0 {
		return HostPtr[byte]{}
	}
	return HostPtr[byte]{ptr: unsafe.Pointer(&b[0]), size: len(b)}
}

func (p EnclavePtr[T]) Addr() uintptr { return uintptr(p.ptr) }
func (p EnclavePtr[T]) Len() int      { return p.size }
func (p EnclavePtr[T]) IsNil() bool   { return p.ptr == nil }
