package ocall

import (
	"github.com/joeycumines/go-ocall-gateway/boundary"
	"github.com/joeycumines/go-ocall-gateway/ocallerr"
	"github.com/joeycumines/go-ocall-gateway/ustack"
)

// acquireIOBuffer reserves an n-byte host-memory buffer for a
// read-direction transfer (read, getdents): on the untrusted stack if it
// fits under the large-buffer threshold, otherwise via mmap_untrusted per
// spec.md §4.5 step 4. The returned free func always unwinds whichever
// path was taken and must be deferred by the caller.
func (g *Gateway) acquireIOBuffer(stack *ustack.Stack, n int) (boundary.HostPtr[byte], func(), error) {
	if n <= g.cfg.largeBufThreshold {
		p := stack.AllocAligned(n, 1)
		if p.IsNil() {
			return p, nil, ocallerr.New("ustack.alloc", ocallerr.EPERM)
		}
		return p, func() {}, nil
	}

	p, err := g.dispatcher.MmapUntrusted(n)
	if err != nil {
		return boundary.HostPtr[byte]{}, nil, ocallerr.Wrap("mmap_untrusted", ocallerr.EFAULT, err)
	}
	free := func() { _ = g.dispatcher.MunmapUntrusted(p) }
	return p, free, nil
}

// marshalOutboundBuffer implements the write/send classification rule of
// spec.md §4.5 step 7 for an enclave-resident source buffer buf:
//
//   - entirely outside the enclave is impossible for buf (it is always
//     enclave-resident Go memory passed by the caller), so that branch is
//     reserved for future zero-copy host-buffer callers (see WriteHostBuf);
//   - small buffers are copied onto the untrusted stack;
//   - buffers larger than the threshold are copied into an
//     mmap_untrusted host buffer instead.
//
// A straddling classification cannot arise here either, for the same
// reason: buf is always a plain Go byte slice, which is always entirely
// one thing or the other. Straddling enters the picture only when a
// caller hands the Gateway a HostPtr view directly; WriteHostBuf covers
// that path and performs the rejection spec.md requires.
func (g *Gateway) marshalOutboundBuffer(stack *ustack.Stack, buf []byte) (boundary.HostPtr[byte], func(), error) {
	if len(buf) <= g.cfg.largeBufThreshold {
		p, ok := stack.CopyIn(buf)
		if !ok {
			return p, nil, ocallerr.New("ustack.alloc", ocallerr.EPERM)
		}
		return p, func() {}, nil
	}

	p, err := g.dispatcher.MmapUntrusted(len(buf))
	if err != nil {
		return boundary.HostPtr[byte]{}, nil, ocallerr.Wrap("mmap_untrusted", ocallerr.EFAULT, err)
	}
	if err := g.checker.CopyToHost(p, boundary.EnclavePtrFromBytes(buf), len(buf)); err != nil {
		_ = g.dispatcher.MunmapUntrusted(p)
		return boundary.HostPtr[byte]{}, nil, err
	}
	free := func() { _ = g.dispatcher.MunmapUntrusted(p) }
	return p, free, nil
}

// WriteHostBuf implements the write OCALL for a buffer the caller already
// asserts lives in host memory (the "entirely outside, zero-copy" branch
// of spec.md §4.5 step 7 -- e.g. a buffer obtained from a prior
// mmap_untrusted). A straddling buf is rejected without a host call.
func (g *Gateway) WriteHostBuf(fd int32, buf boundary.HostPtr[byte]) (int, error) {
	if !g.checker.EntirelyOutside(buf.Addr(), buf.Len()) {
		return 0, ocallerr.New("write", ocallerr.EPERM)
	}

	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	args, argsPtr, err := allocArgs[WriteArgs](stack)
	if err != nil {
		return 0, err
	}
	args.FD = fd
	args.Buf = buf
	args.Count = int32(buf.Len())

	res, err := g.exitlessOCALL(CodeWrite, argsPtr)
	if err != nil {
		return 0, err
	}
	if res < 0 {
		return 0, nil
	}
	n := int(args.NumWrote)
	if n > buf.Len() {
		n = buf.Len()
	}
	return n, nil
}
