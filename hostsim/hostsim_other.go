//go:build !linux

package hostsim

import (
	"errors"

	"github.com/joeycumines/go-ocall-gateway/boundary"
	"github.com/joeycumines/go-ocall-gateway/ocall"
	"github.com/joeycumines/go-ocall-gateway/ustack"
)

// errUnsupported is returned by every Simulator operation on platforms
// other than Linux: the filesystem, networking, and futex OCALLs here are
// all implemented as thin proxies onto real Linux syscalls (unix.Open,
// unix.Socket, SYS_FUTEX, ...), and porting that proxy layer to every
// GOOS Go supports is out of scope for a test/demo double.
var errUnsupported = errors.New("hostsim: only supported on linux")

// Simulator is a non-functional stand-in on non-Linux platforms, present
// only so packages that reference hostsim.Simulator still compile.
type Simulator struct{}

// New always fails on non-Linux platforms. See errUnsupported.
func New(heapArena *ustack.Arena) (*Simulator, error) {
	return nil, errUnsupported
}

func (s *Simulator) Close() error { return nil }

func (s *Simulator) MmapUntrusted(size int) (boundary.HostPtr[byte], error) {
	return boundary.HostPtr[byte]{}, errUnsupported
}

func (s *Simulator) MunmapUntrusted(p boundary.HostPtr[byte]) error {
	return errUnsupported
}

func (s *Simulator) Ocall(code ocall.Code, argsHost boundary.HostPtr[byte]) (int32, error) {
	return -1, errUnsupported
}
