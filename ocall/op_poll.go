package ocall

import (
	"unsafe"

	"github.com/joeycumines/go-ocall-gateway/boundary"
)

// Poll implements the poll OCALL. fds is mutated in place: Revents is
// filled in for every entry on return, matching a conventional poll(2)
// contract. The fd table itself is batched through the same USA/
// mmap_untrusted split as any other variable-length buffer.
func (g *Gateway) Poll(fds []PollFDEntry, timeoutMs int32) (nready int, err error) {
	if len(fds) == 0 {
		return 0, nil
	}

	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	tableBytes := len(fds) * int(unsafe.Sizeof(PollFDEntry{}))
	hostTable, free, err := g.acquireIOBuffer(stack, tableBytes)
	if err != nil {
		return 0, err
	}
	defer free()

	fdsSrc := unsafe.Slice((*byte)(unsafe.Pointer(&fds[0])), tableBytes)
	if err := g.checker.CopyToHost(hostTable, boundary.EnclavePtrFromBytes(fdsSrc), tableBytes); err != nil {
		return 0, err
	}

	args, argsPtr, err := allocArgs[PollArgs](stack)
	if err != nil {
		return 0, err
	}
	args.FDs = boundary.Cast[PollFDEntry](hostTable)
	args.NFDs = int32(len(fds))
	args.TimeoutMs = timeoutMs

	res, err := g.exitlessOCALL(CodePoll, argsPtr)
	if err != nil {
		return 0, err
	}
	if res < 0 {
		return 0, nil
	}

	if _, err := g.checker.CopyToEnclave(boundary.EnclavePtrFromBytes(fdsSrc), tableBytes, hostTable, tableBytes); err != nil {
		return 0, err
	}

	n := int(args.NReady)
	if n < 0 {
		n = 0
	}
	if n > len(fds) {
		n = len(fds)
	}
	return n, nil
}
