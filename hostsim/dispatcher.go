//go:build linux

package hostsim

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/joeycumines/go-ocall-gateway/boundary"
	"github.com/joeycumines/go-ocall-gateway/ocall"
	"github.com/joeycumines/go-ocall-gateway/ocallerr"
	"github.com/joeycumines/go-ocall-gateway/ustack"
)

// Simulator implements ocall.HostDispatcher. See the package doc for what
// it does and does not emulate faithfully.
type Simulator struct {
	root      string
	cleanup   func()
	heap      *heapAllocator
	nextTID   atomic.Int64
	listeners sync.Map // int32 -> int (real listening fd)
}

// New builds a Simulator. heapArena backs mmap_untrusted allocations and
// must be a Sub-region of the same ustack.Arena the Gateway's stacks were
// carved from, so every host-memory address this Simulator ever hands
// back falls inside the Gateway's fixed Host-Region.
func New(heapArena *ustack.Arena) (*Simulator, error) {
	root, cleanup, err := newSandboxRoot()
	if err != nil {
		return nil, err
	}
	return &Simulator{
		root:    root,
		cleanup: cleanup,
		heap:    newHeapAllocator(heapArena),
	}, nil
}

// Close removes the sandbox directory backing the filesystem OCALLs.
func (s *Simulator) Close() error {
	if s.cleanup != nil {
		s.cleanup()
	}
	return nil
}

func (s *Simulator) registerListener(fd int32, realFD int) {
	s.listeners.Store(fd, realFD)
}

func (s *Simulator) lookupListener(fd int32) (int, bool) {
	v, ok := s.listeners.Load(fd)
	if !ok {
		return 0, false
	}
	return v.(int), true
}

// MmapUntrusted implements ocall.HostDispatcher.
func (s *Simulator) MmapUntrusted(size int) (boundary.HostPtr[byte], error) {
	return s.heap.alloc(size)
}

// MunmapUntrusted implements ocall.HostDispatcher.
func (s *Simulator) MunmapUntrusted(p boundary.HostPtr[byte]) error {
	return s.heap.free(p)
}

// Ocall implements ocall.HostDispatcher: it type-asserts argsHost back to
// the per-code argument struct ocall.Gateway built it from (the two
// packages share a process, so this is the untrusted-host-process-side of
// the real system's arguments-struct-over-shared-memory convention) and
// fills in whichever output fields the Gateway expects back.
func (s *Simulator) Ocall(code ocall.Code, argsHost boundary.HostPtr[byte]) (int32, error) {
	switch code {
	case ocall.CodeOpen:
		a := argsPtr[ocall.OpenArgs](argsHost)
		fd, err := s.sysOpen(hostString(a.Path), a.Flags, a.Mode)
		if err != nil {
			return -1, nil
		}
		a.FD = fd
		return 0, nil

	case ocall.CodeClose:
		a := argsPtr[ocall.CloseArgs](argsHost)
		if err := s.sysClose(a.FD); err != nil {
			return -1, nil
		}
		return 0, nil

	case ocall.CodeRead:
		a := argsPtr[ocall.ReadArgs](argsHost)
		buf := hostBytes(a.Buf)
		n, err := s.sysRead(a.FD, buf)
		if err != nil {
			return -1, nil
		}
		a.NumRead = int32(n)
		return 0, nil

	case ocall.CodeWrite:
		a := argsPtr[ocall.WriteArgs](argsHost)
		buf := hostBytes(a.Buf)
		n, err := s.sysWrite(a.FD, buf)
		if err != nil {
			return -1, nil
		}
		a.NumWrote = int32(n)
		return 0, nil

	case ocall.CodeFstat:
		a := argsPtr[ocall.FstatArgs](argsHost)
		size, mode, mtime, err := s.sysFstat(a.FD)
		if err != nil {
			return -1, nil
		}
		a.Size, a.Mode, a.MTime = size, mode, mtime
		return 0, nil

	case ocall.CodeLseek:
		a := argsPtr[ocall.LseekArgs](argsHost)
		off, err := s.sysLseek(a.FD, a.Offset, a.Whence)
		if err != nil {
			return -1, nil
		}
		a.NewOff = off
		return 0, nil

	case ocall.CodeMkdir:
		a := argsPtr[ocall.MkdirArgs](argsHost)
		if err := s.sysMkdir(hostString(a.Path), a.Mode); err != nil {
			return -1, nil
		}
		return 0, nil

	case ocall.CodeGetdents:
		a := argsPtr[ocall.GetdentsArgs](argsHost)
		buf := hostBytes(a.Buf)
		n, err := s.sysGetdents(a.FD, buf)
		if err != nil {
			return -1, nil
		}
		a.NumRead = int32(n)
		return 0, nil

	case ocall.CodeRename:
		a := argsPtr[ocall.RenameArgs](argsHost)
		if err := s.sysRename(hostString(a.OldPath), hostString(a.NewPath)); err != nil {
			return -1, nil
		}
		return 0, nil

	case ocall.CodeDelete:
		a := argsPtr[ocall.DeleteArgs](argsHost)
		if err := s.sysDelete(hostString(a.Path), a.IsDir); err != nil {
			return -1, nil
		}
		return 0, nil

	case ocall.CodeCpuid:
		a := argsPtr[ocall.CpuidArgs](argsHost)
		a.EAX, a.EBX, a.ECX, a.EDX = sysCpuid(a.Leaf, a.Subleaf)
		return 0, nil

	case ocall.CodeExit:
		// Deliberately returns success without doing anything: the
		// Gateway's Exit loops forever re-issuing this OCALL (spec's
		// exitless-termination property), and this simulator has no
		// process to actually tear down.
		return 0, nil

	case ocall.CodeCloneThread:
		a := argsPtr[ocall.CloneThreadArgs](argsHost)
		_ = s.sysCloneThread(a.TCSAddr)
		return 0, nil

	case ocall.CodeResumeThread:
		a := argsPtr[ocall.ResumeThreadArgs](argsHost)
		return s.sysResumeThread(a.TID), nil

	case ocall.CodeCreateProcess:
		a := argsPtr[ocall.CreateProcessArgs](argsHost)
		a.PID = s.sysCreateProcess(hostString(a.Args))
		return 0, nil

	case ocall.CodeFutex:
		a := argsPtr[ocall.FutexArgs](argsHost)
		addr := (*uint32)(a.Addr.Pointer())
		a.Result = sysFutex(addr, a.Op, a.Val, a.TimeoutNs)
		if a.Result < 0 {
			return a.Result, nil
		}
		return 0, nil

	case ocall.CodeSocketpair:
		a := argsPtr[ocall.SocketpairArgs](argsHost)
		fd0, fd1, err := s.sysSocketpair(a.Domain, a.Type, a.Protocol)
		if err != nil {
			return -1, nil
		}
		a.FD0, a.FD1 = fd0, fd1
		return 0, nil

	case ocall.CodeListen:
		a := argsPtr[ocall.ListenArgs](argsHost)
		if err := s.sysListen(a.FD, hostBytes(a.Addr)[:a.AddrLen], a.Backlog); err != nil {
			return -1, nil
		}
		return 0, nil

	case ocall.CodeAccept:
		a := argsPtr[ocall.AcceptArgs](argsHost)
		cfd, addrLen, err := s.sysAccept(a.FD, int(a.AddrCap))
		if err != nil {
			return -1, nil
		}
		a.ClientFD, a.AddrLen = cfd, int32(addrLen)
		return 0, nil

	case ocall.CodeConnect:
		a := argsPtr[ocall.ConnectArgs](argsHost)
		if err := s.sysConnect(a.FD, hostBytes(a.Addr)[:a.AddrLen]); err != nil {
			return -1, nil
		}
		return 0, nil

	case ocall.CodeRecv:
		a := argsPtr[ocall.RecvArgs](argsHost)
		buf := hostBytes(a.Buf)[:a.BufCap]
		var control []byte
		if a.ControlCap > 0 {
			control = hostBytes(a.Control)[:a.ControlCap]
		}
		n, cn, err := s.sysRecv(a.FD, buf, control, a.Flags)
		if err != nil {
			return -1, nil
		}
		a.NumRecv, a.ControlLen = int32(n), int32(cn)
		return 0, nil

	case ocall.CodeSend:
		a := argsPtr[ocall.SendArgs](argsHost)
		buf := hostBytes(a.Buf)[:a.Count]
		n, err := s.sysSend(a.FD, buf, a.Flags)
		if err != nil {
			return -1, nil
		}
		a.NumSent = int32(n)
		return 0, nil

	case ocall.CodeSetsockopt:
		a := argsPtr[ocall.SetsockoptArgs](argsHost)
		optval := hostBytes(a.Optval)[:a.Optlen]
		if err := s.sysSetsockopt(a.FD, a.Level, a.Optname, optval); err != nil {
			return -1, nil
		}
		return 0, nil

	case ocall.CodeShutdown:
		a := argsPtr[ocall.ShutdownArgs](argsHost)
		if err := s.sysShutdown(a.FD, a.How); err != nil {
			return -1, nil
		}
		return 0, nil

	case ocall.CodeGettime:
		a := argsPtr[ocall.GettimeArgs](argsHost)
		a.Seconds, a.Nanoseconds = sysGettime()
		return 0, nil

	case ocall.CodeSleep:
		a := argsPtr[ocall.SleepArgs](argsHost)
		a.RemainingUs = sysSleep(a.RequestedUs)
		return 0, nil

	case ocall.CodePoll:
		a := argsPtr[ocall.PollArgs](argsHost)
		entries := unsafe.Slice((*ocall.PollFDEntry)(a.FDs.Pointer()), a.NFDs)
		unixEntries := make([]unixPollEntry, len(entries))
		for i, e := range entries {
			unixEntries[i] = unixPollEntry{FD: e.FD, Events: e.Events}
		}
		n, err := sysPoll(unixEntries, a.TimeoutMs)
		if err != nil {
			return -1, nil
		}
		for i := range entries {
			entries[i].Revents = unixEntries[i].Revents
		}
		a.NReady = int32(n)
		return 0, nil

	case ocall.CodeLoadDebug:
		return 0, nil

	case ocall.CodeGetAttestation:
		a := argsPtr[ocall.GetAttestationArgs](argsHost)
		quote, ias, sig, cert := attestationBlobs(hostBytes(a.UserReportData))
		if err := s.fillAttestationBlob(&a.Quote, &a.QuoteLen, quote); err != nil {
			return -1, nil
		}
		if err := s.fillAttestationBlob(&a.IASReport, &a.IASLen, ias); err != nil {
			return -1, nil
		}
		if err := s.fillAttestationBlob(&a.Signature, &a.SigLen, sig); err != nil {
			return -1, nil
		}
		if err := s.fillAttestationBlob(&a.CertChain, &a.CertLen, cert); err != nil {
			return -1, nil
		}
		return 0, nil

	case ocall.CodeEventfd:
		a := argsPtr[ocall.EventfdArgs](argsHost)
		fd, err := sysEventfd(a.InitVal, a.Flags)
		if err != nil {
			return -1, nil
		}
		a.FD = fd
		return 0, nil

	default:
		return -1, ocallerr.New(code.String(), ocallerr.EINVAL)
	}
}

func (s *Simulator) fillAttestationBlob(dst *boundary.HostPtr[byte], dstLen *int32, content []byte) error {
	p, err := s.heap.alloc(len(content))
	if err != nil {
		return err
	}
	copy(hostBytes(p), content)
	*dst = p
	*dstLen = int32(len(content))
	return nil
}

// argsPtr reinterprets argsHost's address as a *T, the untrusted-host-side
// mirror of ocall.allocArgs's enclave-side overlay: both sides agree on
// the struct's layout because it is the same Go type compiled once, per
// this module's "one process, two labeled regions" simulation.
func argsPtr[T any](p boundary.HostPtr[byte]) *T {
	return (*T)(p.Pointer())
}

// hostBytes reinterprets a HostPtr[byte] as a Go byte slice for direct
// syscall use.
func hostBytes(p boundary.HostPtr[byte]) []byte {
	if p.IsNil() || p.Len() == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(p.Pointer()), p.Len())
}

// hostString reads a NUL-terminated host string back as a Go string,
// trimming the terminator ocall.copyStringIn always includes.
func hostString(p boundary.HostPtr[byte]) string {
	b := hostBytes(p)
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
