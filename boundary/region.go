package boundary

import (
	"fmt"
	"unsafe"
)

// Region describes a fixed, contiguous address range belonging to one side
// of the trust boundary. Regions are immutable once constructed, matching
// spec's "Enclave-Region and Host-Region are disjoint address ranges fixed
// at enclave creation".
//
// base is stored as unsafe.Pointer, not uintptr, so that a Region built
// over ordinary Go-managed memory (as opposed to an mmap'd arena) remains
// valid even if a future Go runtime were to relocate the backing array;
// uintptr arithmetic is only ever performed transiently, inside a single
// expression, per the unsafe.Pointer rules.
type Region struct {
	base unsafe.Pointer
	size uintptr
}

// NewRegion describes the address range [base, base+len(backing)) for the
// given backing slice. The slice must outlive the Region.
func NewRegion(backing []byte) Region {
	if len(backing) == 0 {
		return Region{}
	}
	return Region{base: unsafe.Pointer(&backing[0]), size: uintptr(len(backing))}
}

// NewRegionAt describes an address range directly, for Regions backed by
// raw mmap'd memory rather than a Go slice header.
func NewRegionAt(base unsafe.Pointer, size uintptr) Region {
	return Region{base: base, size: size}
}

// Base returns the start address of the region.
func (r Region) Base() uintptr { return uintptr(r.base) }

// Size returns the region's length in bytes.
func (r Region) Size() uintptr { return r.size }

// End returns the address one past the last byte of the region.
func (r Region) End() uintptr { return uintptr(r.base) + r.size }

// contains reports whether [addr, addr+n) lies entirely within r, with no
// wraparound. A zero-length range at exactly r.End() is considered
// contained (one-past-the-end pointers are legal).
func (r Region) contains(addr uintptr, n uintptr) bool {
	if addr < r.Base() || addr > r.End() {
		return false
	}
	end := addr + n
	if end < addr {
		return false // overflow
	}
	return end <= r.End()
}

// overlaps reports whether [addr, addr+n) shares any byte with r.
func (r Region) overlaps(addr uintptr, n uintptr) bool {
	end := addr + n
	if end < addr {
		end = ^uintptr(0) // overflow: treat as extending to the top of the address space
	}
	if n == 0 {
		return addr >= r.Base() && addr < r.End()
	}
	return addr < r.End() && end > r.Base()
}

func (r Region) String() string {
	return fmt.Sprintf("[%#x, %#x)", r.Base(), r.End())
}
