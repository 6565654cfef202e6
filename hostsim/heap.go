package hostsim

import (
	"sync"
	"unsafe"

	"github.com/joeycumines/go-ocall-gateway/boundary"
	"github.com/joeycumines/go-ocall-gateway/ocallerr"
	"github.com/joeycumines/go-ocall-gateway/ustack"
)

// heapSpan is a free byte range within a heapAllocator's arena.
type heapSpan struct {
	offset, size int
}

// heapAllocator is a simple first-fit allocator over a dedicated Arena
// sub-region, backing the mmap_untrusted/munmap_untrusted OCALLs. It is
// not a general-purpose allocator: it favors simplicity over fragmentation
// resistance, appropriate for a test/demo double rather than a production
// host heap.
type heapAllocator struct {
	mu       sync.Mutex
	arena    *ustack.Arena
	top      int
	freeList []heapSpan
}

func newHeapAllocator(arena *ustack.Arena) *heapAllocator {
	return &heapAllocator{arena: arena}
}

func (h *heapAllocator) alloc(n int) (boundary.HostPtr[byte], error) {
	if n <= 0 {
		return boundary.HostPtr[byte]{}, ocallerr.New("mmap_untrusted", ocallerr.EINVAL)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for i, sp := range h.freeList {
		if sp.size >= n {
			h.freeList = append(h.freeList[:i], h.freeList[i+1:]...)
			if sp.size > n {
				h.freeList = append(h.freeList, heapSpan{offset: sp.offset + n, size: sp.size - n})
			}
			return h.ptrAt(sp.offset, n), nil
		}
	}

	if h.top+n > len(h.arena.Bytes()) {
		return boundary.HostPtr[byte]{}, ocallerr.New("mmap_untrusted", ocallerr.EPERM)
	}
	off := h.top
	h.top += n
	return h.ptrAt(off, n), nil
}

func (h *heapAllocator) ptrAt(offset, n int) boundary.HostPtr[byte] {
	base := unsafe.Pointer(&h.arena.Bytes()[offset])
	return boundary.NewHostPtr[byte](base, n)
}

func (h *heapAllocator) free(p boundary.HostPtr[byte]) error {
	base := uintptr(unsafe.Pointer(&h.arena.Bytes()[0]))
	addr := p.Addr()
	if addr < base || addr >= base+uintptr(len(h.arena.Bytes())) {
		return ocallerr.New("munmap_untrusted", ocallerr.EINVAL)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.freeList = append(h.freeList, heapSpan{offset: int(addr - base), size: p.Len()})
	return nil
}
