//go:build !linux && !darwin

package ustack

// NewArena allocates size bytes of ordinary Go-managed memory on platforms
// without an anonymous-mmap primitive wired up here (Windows's
// VirtualAlloc would be the real equivalent; out of scope for this
// module's portability story).
func NewArena(size int) (*Arena, error) {
	if size <= 0 {
		size = DefaultSize
	}
	return &Arena{buf: make([]byte, size)}, nil
}
