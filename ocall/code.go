package ocall

// Code identifies one OCALL operation. Values are stable once assigned:
// the untrusted dispatcher on the other side of the boundary keys its own
// switch on this same numbering.
type Code uint32

const (
	CodeOpen Code = iota
	CodeClose
	CodeRead
	CodeWrite
	CodeFstat
	CodeLseek
	CodeMkdir
	CodeGetdents
	CodeMmapUntrusted
	CodeMunmapUntrusted
	CodeCpuid
	CodeExit
	CodeCloneThread
	CodeResumeThread
	CodeCreateProcess
	CodeFutex
	CodeSocketpair
	CodeListen
	CodeAccept
	CodeConnect
	CodeRecv
	CodeSend
	CodeSetsockopt
	CodeShutdown
	CodeGettime
	CodeSleep
	CodePoll
	CodeRename
	CodeDelete
	CodeLoadDebug
	CodeGetAttestation
	CodeEventfd

	codeCount
)

var codeNames = [codeCount]string{
	CodeOpen:            "open",
	CodeClose:           "close",
	CodeRead:            "read",
	CodeWrite:           "write",
	CodeFstat:           "fstat",
	CodeLseek:           "lseek",
	CodeMkdir:           "mkdir",
	CodeGetdents:        "getdents",
	CodeMmapUntrusted:   "mmap_untrusted",
	CodeMunmapUntrusted: "munmap_untrusted",
	CodeCpuid:           "cpuid",
	CodeExit:            "exit",
	CodeCloneThread:     "clone_thread",
	CodeResumeThread:    "resume_thread",
	CodeCreateProcess:   "create_process",
	CodeFutex:           "futex",
	CodeSocketpair:      "socketpair",
	CodeListen:          "listen",
	CodeAccept:          "accept",
	CodeConnect:         "connect",
	CodeRecv:            "recv",
	CodeSend:            "send",
	CodeSetsockopt:      "setsockopt",
	CodeShutdown:        "shutdown",
	CodeGettime:         "gettime",
	CodeSleep:           "sleep",
	CodePoll:            "poll",
	CodeRename:          "rename",
	CodeDelete:          "delete",
	CodeLoadDebug:       "load_debug",
	CodeGetAttestation:  "get_attestation",
	CodeEventfd:         "eventfd",
}

func (c Code) String() string {
	if c < codeCount {
		if n := codeNames[c]; n != "" {
			return n
		}
	}
	return "unknown_ocall"
}
