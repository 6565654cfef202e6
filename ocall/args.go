package ocall

import "github.com/joeycumines/go-ocall-gateway/boundary"

// The structs below fix the shape of each OCALL's argument struct, per
// spec.md §3's "each code fixes the shape of its associated arguments
// struct." Every pointer field holds a host address (a HostPtr), built by
// the Gateway from an enclave-side buffer, either by ustack.Stack.CopyIn
// onto the untrusted stack or, for a large buffer, by a boundary.Checker
// copy into an mmap_untrusted region. Variable-length output buffers are
// copied back by the Gateway after dispatch through the Checker; scalar
// output fields are read directly from the args struct.

type OpenArgs struct {
	Path  boundary.HostPtr[byte]
	Flags int32
	Mode  uint32
	FD    int32 // out
}

type CloseArgs struct {
	FD int32
}

type ReadArgs struct {
	FD      int32
	Buf     boundary.HostPtr[byte]
	Count   int32
	NumRead int32 // out
}

type WriteArgs struct {
	FD       int32
	Buf      boundary.HostPtr[byte]
	Count    int32
	NumWrote int32 // out
}

type FstatArgs struct {
	FD    int32
	Size  int64 // out
	Mode  uint32
	MTime int64
}

type LseekArgs struct {
	FD      int32
	Offset  int64
	Whence  int32
	NewOff  int64 // out
}

type MkdirArgs struct {
	Path boundary.HostPtr[byte]
	Mode uint32
}

type GetdentsArgs struct {
	FD      int32
	Buf     boundary.HostPtr[byte]
	Count   int32
	NumRead int32 // out
}

type RenameArgs struct {
	OldPath boundary.HostPtr[byte]
	NewPath boundary.HostPtr[byte]
}

type DeleteArgs struct {
	Path      boundary.HostPtr[byte]
	IsDir     bool
}

type CpuidArgs struct {
	Leaf, Subleaf      uint32
	EAX, EBX, ECX, EDX uint32 // out
}

type CloneThreadArgs struct {
	TCSAddr uintptr
}

type ResumeThreadArgs struct {
	TID int32
}

type CreateProcessArgs struct {
	Args boundary.HostPtr[byte]
	PID  int32 // out
}

type FutexArgs struct {
	Addr      boundary.HostPtr[uint32]
	Op        int32
	Val       uint32
	TimeoutNs int64
	Result    int32 // out
}

type SocketpairArgs struct {
	Domain, Type, Protocol int32
	FD0, FD1               int32 // out
}

type ListenArgs struct {
	FD      int32
	Addr    boundary.HostPtr[byte]
	AddrLen int32
	Backlog int32
}

type AcceptArgs struct {
	FD        int32
	Addr      boundary.HostPtr[byte]
	AddrCap   int32
	AddrLen   int32 // out, clamped to AddrCap
	ClientFD  int32 // out
}

type ConnectArgs struct {
	FD      int32
	Addr    boundary.HostPtr[byte]
	AddrLen int32
}

type RecvArgs struct {
	FD         int32
	Buf        boundary.HostPtr[byte]
	BufCap     int32
	Control    boundary.HostPtr[byte]
	ControlCap int32
	Flags      int32
	NumRecv    int32 // out
	ControlLen int32 // out, clamped to ControlCap
}

type SendArgs struct {
	FD      int32
	Buf     boundary.HostPtr[byte]
	Count   int32
	Flags   int32
	NumSent int32 // out
}

type SetsockoptArgs struct {
	FD               int32
	Level, Optname   int32
	Optval           boundary.HostPtr[byte]
	Optlen           int32
}

type ShutdownArgs struct {
	FD  int32
	How int32
}

type GettimeArgs struct {
	Seconds     int64 // out
	Nanoseconds int64 // out
}

type SleepArgs struct {
	RequestedUs int64
	RemainingUs int64 // out
}

type PollFDEntry struct {
	FD      int32
	Events  int16
	Revents int16 // out
}

type PollArgs struct {
	FDs     boundary.HostPtr[PollFDEntry]
	NFDs    int32
	TimeoutMs int32
	NReady  int32 // out
}

type LoadDebugArgs struct {
	Command boundary.HostPtr[byte]
}

type GetAttestationArgs struct {
	UserReportData boundary.HostPtr[byte]

	Quote       boundary.HostPtr[byte] // out
	QuoteLen    int32                  // out
	IASReport   boundary.HostPtr[byte] // out
	IASLen      int32                  // out
	Signature   boundary.HostPtr[byte] // out
	SigLen      int32                  // out
	CertChain   boundary.HostPtr[byte] // out
	CertLen     int32                  // out
}

type EventfdArgs struct {
	InitVal uint32
	Flags   int32
	FD      int32 // out
}

type ExitArgs struct {
	Code      int32
	ExitGroup bool
}

type MmapUntrustedArgs struct {
	Size int64
	Addr boundary.HostPtr[byte] // out
}

type MunmapUntrustedArgs struct {
	Addr boundary.HostPtr[byte]
	Size int64
}
