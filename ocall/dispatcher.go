package ocall

import "github.com/joeycumines/go-ocall-gateway/boundary"

// HostDispatcher is the boundary contract §6 consumed from the untrusted
// host: the direct enclave-exit primitive plus the two allocator OCALLs
// the Gateway also needs recursively for large buffers. Real SGX/TDX glue
// code implements this by trapping into host runtime code; package
// hostsim provides a reference implementation for tests.
type HostDispatcher interface {
	// Ocall performs one direct enclave-exit transition: code identifies
	// the operation and argsHost must point to that operation's fixed
	// argument struct, already resident in host memory. The return value
	// is the operation's result code (errno-shaped: negative on error).
	Ocall(code Code, argsHost boundary.HostPtr[byte]) (int32, error)

	// MmapUntrusted allocates size bytes of host-heap memory for a
	// transfer too large for the untrusted stack.
	MmapUntrusted(size int) (boundary.HostPtr[byte], error)

	// MunmapUntrusted releases memory obtained from MmapUntrusted.
	MunmapUntrusted(p boundary.HostPtr[byte]) error
}
