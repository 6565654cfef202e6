//go:build linux || darwin

package ustack

import "golang.org/x/sys/unix"

// NewArena allocates size bytes of anonymous, private memory via mmap, the
// same primitive a real Gramine-style host allocator would use to back an
// enclave thread's untrusted stack.
func NewArena(size int) (*Arena, error) {
	if size <= 0 {
		size = DefaultSize
	}
	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}
	return &Arena{
		buf: buf,
		release: func() error {
			return unix.Munmap(buf)
		},
	}, nil
}
