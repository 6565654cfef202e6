package ocall

import (
	"github.com/joeycumines/go-ocall-gateway/boundary"
	"github.com/joeycumines/go-ocall-gateway/ocallerr"
)

// MmapUntrusted exposes the allocator OCALL directly, for callers (such
// as a caller-managed large send/recv buffer) that want a host-heap
// region without going through a read/write operation that would
// allocate and free one implicitly.
func (g *Gateway) MmapUntrusted(size int) (boundary.HostPtr[byte], error) {
	if size <= 0 {
		return boundary.HostPtr[byte]{}, ocallerr.New("mmap_untrusted", ocallerr.EINVAL)
	}
	p, err := g.dispatcher.MmapUntrusted(size)
	if err != nil {
		return boundary.HostPtr[byte]{}, ocallerr.Wrap("mmap_untrusted", ocallerr.EFAULT, err)
	}
	return p, nil
}

// MunmapUntrusted implements the munmap_untrusted OCALL's fixed rule
// (spec.md §4.5 step 7): the region must be entirely outside the enclave,
// or the call is rejected without reaching the host.
func (g *Gateway) MunmapUntrusted(p boundary.HostPtr[byte]) error {
	if !g.checker.EntirelyOutside(p.Addr(), p.Len()) {
		return ocallerr.New("munmap_untrusted", ocallerr.EINVAL)
	}
	if err := g.dispatcher.MunmapUntrusted(p); err != nil {
		return ocallerr.Wrap("munmap_untrusted", ocallerr.EFAULT, err)
	}
	return nil
}
