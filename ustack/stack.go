package ustack

import (
	"unsafe"

	"github.com/joeycumines/go-ocall-gateway/boundary"
)

// DefaultSize is the typical untrusted-stack size named in spec.md §3.
const DefaultSize = 2 * 1024 * 1024

// MinAlign is the minimum alignment AllocAligned enforces, sufficient for
// any Request Descriptor bearing an XBL lock word (spec.md §4.2: "minimum
// 4 bytes for descriptors bearing XBL").
const MinAlign = 4

// Stack is a bump allocator over an Arena. It is not safe for concurrent
// use; see the package doc.
type Stack struct {
	arena     *Arena
	top       int
	highWater int
}

// NewStack wraps an Arena in a fresh bump allocator, offset zero.
func NewStack(arena *Arena) *Stack {
	return &Stack{arena: arena}
}

// Region describes the Stack's backing Arena as a boundary.Region, for
// Checker construction.
func (s *Stack) Region() boundary.Region {
	return boundary.NewRegion(s.arena.buf)
}

// Alloc reserves n bytes with 1-byte alignment (promoted internally to
// MinAlign, as every allocation must be at least descriptor-aligned).
func (s *Stack) Alloc(n int) boundary.HostPtr[byte] {
	return s.AllocAligned(n, 1)
}

// AllocAligned reserves n bytes aligned to align bytes (or MinAlign,
// whichever is larger). It returns the null HostPtr if the remaining
// Arena space is insufficient; the Gateway treats that as a permission
// error per spec.md §4.2.
func (s *Stack) AllocAligned(n int, align int) boundary.HostPtr[byte] {
	if n < 0 {
		return boundary.HostPtr[byte]{}
	}
	off, ok := s.reserve(n, align)
	if !ok {
		return boundary.HostPtr[byte]{}
	}
	if n == 0 {
		return boundary.HostPtr[byte]{}
	}
	return boundary.NewHostPtr[byte](unsafe.Pointer(&s.arena.buf[off]), n)
}

// CopyIn copies src into a freshly allocated region of the Arena and
// returns a HostPtr describing it, implementing spec.md §4.2's
// copy_in_from_enclave. The enclave-resident src is read directly because
// this package, not BMC, owns the Arena and already knows the destination
// is valid; BMC governs crossings into and out of enclave memory performed
// by the Gateway, not this allocator's own bookkeeping writes.
func (s *Stack) CopyIn(src []byte) (boundary.HostPtr[byte], bool) {
	if len(src) == 0 {
		return boundary.HostPtr[byte]{}, true
	}
	off, ok := s.reserve(len(src), 1)
	if !ok {
		return boundary.HostPtr[byte]{}, false
	}
	copy(s.arena.buf[off:off+len(src)], src)
	return boundary.NewHostPtr[byte](unsafe.Pointer(&s.arena.buf[off]), len(src)), true
}

// reserve bumps the stack top by n bytes, aligned to align (or MinAlign),
// and returns the starting offset. ok is false on exhaustion, in which
// case the stack is left unmodified.
func (s *Stack) reserve(n int, align int) (int, bool) {
	if len(s.arena.buf) == 0 {
		return 0, false
	}
	if align < MinAlign {
		align = MinAlign
	}
	base := uintptr(unsafe.Pointer(&s.arena.buf[0]))
	cur := base + uintptr(s.top)
	aligned := alignUp(cur, uintptr(align))
	pad := int(aligned - cur)
	end := s.top + pad + n
	if end < 0 || end > len(s.arena.buf) {
		return 0, false
	}
	off := s.top + pad
	s.top = end
	if s.top > s.highWater {
		s.highWater = s.top
	}
	return off, true
}

func alignUp(p uintptr, align uintptr) uintptr {
	return (p + align - 1) &^ (align - 1)
}

// HighWater returns the largest value s.top has reached since the Stack
// was created or last had its high-water mark reset. Nothing in this
// module reports it to telemetry.Metrics.
func (s *Stack) HighWater() int { return s.highWater }

// ResetHighWater sets the high-water mark back to the current top, for
// periodic metrics collection.
func (s *Stack) ResetHighWater() { s.highWater = s.top }

// Mark captures the current top of the stack, to be restored by the
// returned Guard. Per the design note in SPEC_FULL.md, Mark/Guard model
// the untrusted stack as a scoped resource rather than relying on manual
// reset calls scattered through every OCALL implementation.
func (s *Stack) Mark() Guard {
	return Guard{stack: s, savedTop: s.top}
}

// Guard resets its Stack to the top captured by Mark. Release is
// idempotent and nil-safe, so `defer guard.Release()` is correct even if
// the OCALL that created it never allocated anything.
type Guard struct {
	stack    *Stack
	savedTop int
	released bool
}

// Release restores the Stack to its state at Mark time. It must be called
// on every exit path of every OCALL, including error paths (spec.md §4.2,
// invariant on USA.reset()).
func (g *Guard) Release() {
	if g == nil || g.released || g.stack == nil {
		return
	}
	g.stack.top = g.savedTop
	g.released = true
}
