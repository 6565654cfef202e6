package ustack

import "github.com/joeycumines/go-ocall-gateway/boundary"

// Arena is the host-memory backing store for one Stack. Its bytes are the
// "host memory" half of the trust boundary: real anonymous-mmap'd pages on
// platforms that support it (see arena_unix.go), so that an EntirelyOutside
// classification against it means something closer to the original's
// actual host heap than a plain Go slice would.
type Arena struct {
	buf     []byte
	release func() error
}

// Bytes exposes the arena's backing storage. Callers outside this package
// should only ever use this to build a boundary.Region describing the
// arena, not to index into it directly.
func (a *Arena) Bytes() []byte { return a.buf }

// Close releases the arena's backing memory. Arenas are long-lived
// (typically one mapping per Gateway, with pooled Stacks carved out of it
// by Sub), so Close is normally only called during shutdown or in tests.
func (a *Arena) Close() error {
	if a.release != nil {
		return a.release()
	}
	return nil
}

// Region describes the arena's full backing range as a boundary.Region,
// for Checker construction over the single host arena an enclave shares
// with its host process.
func (a *Arena) Region() boundary.Region {
	return boundary.NewRegion(a.buf)
}

// Sub carves a non-owning view of length bytes starting at offset out of
// the arena's backing storage. The returned Arena shares memory with a: it
// is how a single real mapping (one Host-Region) is split into several
// independent Stacks, or into a Stack region and a separate heap region,
// without each one issuing its own mmap and drifting outside the fixed
// Host-Region the boundary Checker was built against. Close on the result
// is a no-op; only the owning Arena's Close releases the mapping.
func (a *Arena) Sub(offset, length int) *Arena {
	return &Arena{buf: a.buf[offset : offset+length]}
}
