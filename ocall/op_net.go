package ocall

import (
	"github.com/joeycumines/go-ocall-gateway/boundary"
	"github.com/joeycumines/go-ocall-gateway/ocallerr"
)

// Socketpair implements the socketpair OCALL: a fixed struct, no buffers.
func (g *Gateway) Socketpair(domain, typ, protocol int32) (fd0, fd1 int32, err error) {
	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	args, argsPtr, err := allocArgs[SocketpairArgs](stack)
	if err != nil {
		return 0, 0, err
	}
	args.Domain = domain
	args.Type = typ
	args.Protocol = protocol

	if _, err := g.exitlessOCALL(CodeSocketpair, argsPtr); err != nil {
		return 0, 0, err
	}
	return args.FD0, args.FD1, nil
}

// Listen implements the listen OCALL; addr is an enclave-resident sockaddr
// buffer, USA-copied onto the untrusted stack (addresses are always small,
// well under the large-buffer threshold).
func (g *Gateway) Listen(fd int32, addr []byte, backlog int32) (int32, error) {
	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	addrPtr, ok := stack.CopyIn(addr)
	if !ok {
		return 0, ocallerr.New("listen", ocallerr.EPERM)
	}

	args, argsPtr, err := allocArgs[ListenArgs](stack)
	if err != nil {
		return 0, err
	}
	args.FD = fd
	args.Addr = addrPtr
	args.AddrLen = int32(len(addr))
	args.Backlog = backlog

	return g.exitlessOCALL(CodeListen, argsPtr)
}

// Accept implements the accept OCALL. The returned address length is
// clamped to len(addrOut) by the host dispatcher; the Gateway further
// clamps on copy-back to guard against a misbehaving host (spec.md §8,
// P2: size clamping).
func (g *Gateway) Accept(fd int32, addrOut []byte) (clientFD int32, addrLen int, err error) {
	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	addrCap := len(addrOut)
	var hostAddr boundary.HostPtr[byte]
	if addrCap > 0 {
		hostAddr = stack.AllocAligned(addrCap, 1)
		if hostAddr.IsNil() {
			return 0, 0, ocallerr.New("accept", ocallerr.EPERM)
		}
	}

	args, argsPtr, err := allocArgs[AcceptArgs](stack)
	if err != nil {
		return 0, 0, err
	}
	args.FD = fd
	args.Addr = hostAddr
	args.AddrCap = int32(addrCap)

	res, err := g.exitlessOCALL(CodeAccept, argsPtr)
	if err != nil {
		return 0, 0, err
	}
	if res < 0 {
		return 0, 0, nil
	}

	n := int(args.AddrLen)
	if n > addrCap {
		n = addrCap
	}
	if n > 0 {
		if _, err := g.checker.CopyToEnclave(boundary.EnclavePtrFromBytes(addrOut), addrCap, hostAddr, n); err != nil {
			return 0, 0, err
		}
	}
	return args.ClientFD, n, nil
}

// Connect implements the connect OCALL.
func (g *Gateway) Connect(fd int32, addr []byte) (int32, error) {
	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	addrPtr, ok := stack.CopyIn(addr)
	if !ok {
		return 0, ocallerr.New("connect", ocallerr.EPERM)
	}

	args, argsPtr, err := allocArgs[ConnectArgs](stack)
	if err != nil {
		return 0, err
	}
	args.FD = fd
	args.Addr = addrPtr
	args.AddrLen = int32(len(addr))

	return g.exitlessOCALL(CodeConnect, argsPtr)
}

// Recv implements the recv OCALL. control carries an optional ancillary
// (cmsg) buffer; per the resolved open question on non-null control with
// zero capacity, that combination is rejected with EINVAL before any
// dispatch rather than silently treated as "no control data requested".
func (g *Gateway) Recv(fd int32, buf []byte, control []byte, flags int32) (n int, controlLen int, err error) {
	if control != nil && len(control) == 0 {
		return 0, 0, ocallerr.New("recv", ocallerr.EINVAL)
	}

	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	bufCap := len(buf)
	hostBuf, freeBuf, err := g.acquireIOBuffer(stack, maxInt(bufCap, 1))
	if err != nil {
		return 0, 0, err
	}
	defer freeBuf()

	var hostControl boundary.HostPtr[byte]
	controlCap := len(control)
	if controlCap > 0 {
		hostControl = stack.AllocAligned(controlCap, 1)
		if hostControl.IsNil() {
			return 0, 0, ocallerr.New("recv", ocallerr.EPERM)
		}
	}

	args, argsPtr, err := allocArgs[RecvArgs](stack)
	if err != nil {
		return 0, 0, err
	}
	args.FD = fd
	args.Buf = hostBuf
	args.BufCap = int32(bufCap)
	args.Control = hostControl
	args.ControlCap = int32(controlCap)
	args.Flags = flags

	res, err := g.exitlessOCALL(CodeRecv, argsPtr)
	if err != nil {
		return 0, 0, err
	}
	if res < 0 {
		return 0, 0, nil
	}

	numRecv := clampInt(int(args.NumRecv), bufCap)
	if numRecv > 0 {
		if _, err := g.checker.CopyToEnclave(boundary.EnclavePtrFromBytes(buf), bufCap, boundary.Cast[byte](hostBuf), numRecv); err != nil {
			return 0, 0, err
		}
	}

	cLen := clampInt(int(args.ControlLen), controlCap)
	if cLen > 0 {
		if _, err := g.checker.CopyToEnclave(boundary.EnclavePtrFromBytes(control), controlCap, hostControl, cLen); err != nil {
			return 0, 0, err
		}
	}

	return numRecv, cLen, nil
}

// Send implements the send OCALL, following the same write/send
// classification rule as Write.
func (g *Gateway) Send(fd int32, buf []byte, flags int32) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}

	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	hostBuf, free, err := g.marshalOutboundBuffer(stack, buf)
	if err != nil {
		return 0, err
	}
	defer free()

	args, argsPtr, err := allocArgs[SendArgs](stack)
	if err != nil {
		return 0, err
	}
	args.FD = fd
	args.Buf = hostBuf
	args.Count = int32(len(buf))
	args.Flags = flags

	res, err := g.exitlessOCALL(CodeSend, argsPtr)
	if err != nil {
		return 0, err
	}
	if res < 0 {
		return 0, nil
	}
	return clampInt(int(args.NumSent), len(buf)), nil
}

// Setsockopt implements the setsockopt OCALL.
func (g *Gateway) Setsockopt(fd, level, optname int32, optval []byte) (int32, error) {
	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	optPtr, ok := stack.CopyIn(optval)
	if !ok {
		return 0, ocallerr.New("setsockopt", ocallerr.EPERM)
	}

	args, argsPtr, err := allocArgs[SetsockoptArgs](stack)
	if err != nil {
		return 0, err
	}
	args.FD = fd
	args.Level = level
	args.Optname = optname
	args.Optval = optPtr
	args.Optlen = int32(len(optval))

	return g.exitlessOCALL(CodeSetsockopt, argsPtr)
}

// Shutdown implements the shutdown OCALL.
func (g *Gateway) Shutdown(fd, how int32) (int32, error) {
	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	args, argsPtr, err := allocArgs[ShutdownArgs](stack)
	if err != nil {
		return 0, err
	}
	args.FD = fd
	args.How = how

	return g.exitlessOCALL(CodeShutdown, argsPtr)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampInt(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
