package ocall

import (
	"github.com/joeycumines/go-ocall-gateway/boundary"
	"github.com/joeycumines/go-ocall-gateway/ocallerr"
)

// Cpuid implements the cpuid OCALL: a fixed-size, register-shaped struct
// with no buffers to marshal.
func (g *Gateway) Cpuid(leaf, subleaf uint32) (eax, ebx, ecx, edx uint32, err error) {
	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	args, argsPtr, err := allocArgs[CpuidArgs](stack)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	args.Leaf = leaf
	args.Subleaf = subleaf

	if _, err := g.exitlessOCALL(CodeCpuid, argsPtr); err != nil {
		return 0, 0, 0, 0, err
	}
	return args.EAX, args.EBX, args.ECX, args.EDX, nil
}

// Exit implements the exit OCALL's unterminable semantics (spec.md §4.5
// step 7, P7): a malicious or buggy host that returns from the exit
// syscall instead of tearing down the enclave must not be allowed to hand
// control back to enclave code, so this method loops re-issuing the
// direct-exit call forever. It never returns.
func (g *Gateway) Exit(code int32, exitGroup bool) {
	stack := g.acquireStack()
	defer g.releaseStack(stack)

	for {
		guard := stack.Mark()
		args, argsPtr, err := allocArgs[ExitArgs](stack)
		if err == nil {
			args.Code = code
			args.ExitGroup = exitGroup
			_, _ = g.directExit(CodeExit, argsPtr)
		}
		guard.Release()
		// A returning exit OCALL means the host ignored the request;
		// re-issue indefinitely rather than let control fall through.
	}
}

// CloneThread implements the clone_thread OCALL: a thin pass-through
// carrying only the new thread's TCS address, present in the code table
// but given no further detail in spec.md §4.5.
func (g *Gateway) CloneThread(tcsAddr uintptr) (int32, error) {
	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	args, argsPtr, err := allocArgs[CloneThreadArgs](stack)
	if err != nil {
		return 0, err
	}
	args.TCSAddr = tcsAddr

	return g.exitlessOCALL(CodeCloneThread, argsPtr)
}

// ResumeThread implements the resume_thread OCALL.
func (g *Gateway) ResumeThread(tid int32) (int32, error) {
	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	args, argsPtr, err := allocArgs[ResumeThreadArgs](stack)
	if err != nil {
		return 0, err
	}
	args.TID = tid

	return g.exitlessOCALL(CodeResumeThread, argsPtr)
}

// CreateProcess implements the create_process OCALL; argv crosses as a
// single NUL-terminated, space-joined string (the untrusted dispatcher
// owns further parsing, same as the file-path OCALLs).
func (g *Gateway) CreateProcess(args string) (pid int32, err error) {
	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	argsPtr, ok := copyStringIn(stack, args)
	if !ok {
		return 0, ocallerr.New("create_process", ocallerr.EPERM)
	}

	a, hostArgs, err := allocArgs[CreateProcessArgs](stack)
	if err != nil {
		return 0, err
	}
	a.Args = argsPtr

	if _, err := g.exitlessOCALL(CodeCreateProcess, hostArgs); err != nil {
		return 0, err
	}
	return a.PID, nil
}

// Futex implements the futex OCALL's fixed rule (spec.md §4.5 step 7):
// the futex word's address must be entirely outside the enclave, since it
// is a cross-boundary word shared with host-side code; an in-enclave
// address is rejected with EINVAL before any dispatch (concrete scenario
// 4 in spec.md §8).
func (g *Gateway) Futex(addr boundary.HostPtr[uint32], op int32, val uint32, timeoutNs int64) (int32, error) {
	if !g.checker.EntirelyOutside(addr.Addr(), 4) {
		return 0, ocallerr.New("futex", ocallerr.EINVAL)
	}

	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	args, argsPtr, err := allocArgs[FutexArgs](stack)
	if err != nil {
		return 0, err
	}
	args.Addr = addr
	args.Op = op
	args.Val = val
	args.TimeoutNs = timeoutNs

	if _, err := g.exitlessOCALL(CodeFutex, argsPtr); err != nil {
		return 0, err
	}
	return args.Result, nil
}
