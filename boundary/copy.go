package boundary

import (
	"unsafe"

	"github.com/joeycumines/go-ocall-gateway/ocallerr"
)

// Classification is the total, three-way result of checking an address
// range against the enclave/host region pair.
type Classification int

const (
	// Straddling is returned for any range that crosses the host
	// boundary: partially inside the host region and partially outside
	// it. Per spec.md §4.1, straddling regions always fail.
	Straddling Classification = iota
	// Inside means the range lies entirely outside the host region. The
	// host region is the only address range fixed and untrusted by
	// construction; everything else belongs to the enclave's own
	// reserved memory, the same way Gramine treats any address that
	// isn't inside its designated untrusted range as enclave-owned,
	// rather than requiring every enclave-side buffer to be carved out
	// of one specific backing array.
	Inside
	// Outside means the range lies entirely within the host region.
	Outside
)

func (c Classification) String() string {
	switch c {
	case Inside:
		return "inside"
	case Outside:
		return "outside"
	default:
		return "straddling"
	}
}

// Checker holds the fixed enclave/host region pair for one enclave
// instance and implements the BMC predicates and copy primitives of
// spec.md §4.1. A Checker is safe for concurrent use; it holds no mutable
// state beyond the two Regions fixed at construction.
//
// enclave is kept for documentation and future stricter checks but does
// not drive Classify: see Inside's doc comment for why classification is
// anchored on the host region alone.
type Checker struct {
	enclave Region
	host    Region
}

// New builds a Checker over the given enclave and host regions. The
// regions must not overlap; this is a configuration invariant left to the
// caller: neither New nor ocall.NewGateway checks it, and it is not
// re-checked on every call.
func New(enclave, host Region) *Checker {
	return &Checker{enclave: enclave, host: host}
}

// Classify implements the total predicate described in spec.md §4.1.
func (c *Checker) Classify(addr uintptr, n int) Classification {
	sz := uintptr(n)
	if c.host.contains(addr, sz) {
		return Outside
	}
	if c.host.overlaps(addr, sz) {
		return Straddling
	}
	return Inside
}

// EntirelyInside reports whether [addr, addr+n) lies wholly in enclave
// memory.
func (c *Checker) EntirelyInside(addr uintptr, n int) bool {
	return c.Classify(addr, n) == Inside
}

// EntirelyOutside reports whether [addr, addr+n) lies wholly in host
// memory.
func (c *Checker) EntirelyOutside(addr uintptr, n int) bool {
	return c.Classify(addr, n) == Outside
}

// Straddles reports whether [addr, addr+n) is neither entirely inside nor
// entirely outside.
func (c *Checker) Straddles(addr uintptr, n int) bool {
	return c.Classify(addr, n) == Straddling
}

// CopyToEnclave copies exactly n bytes from a host-resident source into an
// enclave-resident destination. It fails (returning 0 and a permission
// error) unless dst is entirely inside the enclave, src is entirely
// outside it, and n does not exceed dstCap. No partial write is made
// observable on failure: the bounds check happens before any byte is
// touched.
func (c *Checker) CopyToEnclave(dst EnclavePtr[byte], dstCap int, src HostPtr[byte], n int) (int, error) {
	if n < 0 || n > dstCap {
		return 0, ocallerr.New("boundary.copy_to_enclave", ocallerr.EPERM)
	}
	if !c.EntirelyInside(dst.Addr(), dstCap) {
		return 0, ocallerr.New("boundary.copy_to_enclave", ocallerr.EPERM)
	}
	if !c.EntirelyOutside(src.Addr(), n) {
		return 0, ocallerr.New("boundary.copy_to_enclave", ocallerr.EPERM)
	}
	if n == 0 {
		return 0, nil
	}
	dstSlice := unsafe.Slice((*byte)(dst.ptr), dstCap)
	srcSlice := unsafe.Slice((*byte)(src.ptr), n)
	copy(dstSlice[:n], srcSlice)
	return n, nil
}

// CopyToHost is the symmetric operation: dst must be entirely outside the
// enclave, src entirely inside it.
func (c *Checker) CopyToHost(dst HostPtr[byte], src EnclavePtr[byte], n int) error {
	if n < 0 || n > dst.Len() {
		return ocallerr.New("boundary.copy_to_host", ocallerr.EPERM)
	}
	if !c.EntirelyOutside(dst.Addr(), dst.Len()) {
		return ocallerr.New("boundary.copy_to_host", ocallerr.EPERM)
	}
	if !c.EntirelyInside(src.Addr(), n) {
		return ocallerr.New("boundary.copy_to_host", ocallerr.EPERM)
	}
	if n == 0 {
		return nil
	}
	dstSlice := unsafe.Slice((*byte)(dst.ptr), dst.Len())
	srcSlice := unsafe.Slice((*byte)(src.ptr), n)
	copy(dstSlice[:n], srcSlice)
	return nil
}

// CopyPtrToEnclave validates that a host-supplied pointer+length refers
// entirely to host memory, then assigns it into an enclave variable as a
// HostPtr. This is how the Gateway accepts, e.g., the four attestation
// blob pointers a host dispatcher returns: the pointers themselves cross
// into enclave code, but only after classification, and they remain
// HostPtr values (never dereferenced without a further Copy call).
func CopyPtrToEnclave[T any](c *Checker, hostAddr unsafe.Pointer, n int) (HostPtr[T], error) {
	if !c.EntirelyOutside(uintptr(hostAddr), n) {
		return HostPtr[T]{}, ocallerr.New("boundary.copy_ptr_to_enclave", ocallerr.EPERM)
	}
	return NewHostPtr[T](hostAddr, n), nil
}
