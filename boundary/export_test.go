package boundary

import "unsafe"

// ptrOf is a test-only helper for turning a non-empty []byte into the
// unsafe.Pointer the public constructors expect.
func ptrOf(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}
