package boundary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChecker(t *testing.T) (*Checker, []byte, []byte) {
	t.Helper()
	enclaveBuf := make([]byte, 4096)
	hostBuf := make([]byte, 4096)
	c := New(NewRegion(enclaveBuf), NewRegion(hostBuf))
	return c, enclaveBuf, hostBuf
}

func TestClassify(t *testing.T) {
	c, enclaveBuf, hostBuf := newTestChecker(t)

	assert.Equal(t, Inside, c.Classify(uintptr(ptrOf(enclaveBuf)), 16))
	assert.Equal(t, Outside, c.Classify(uintptr(ptrOf(hostBuf)), 16))

	// Any address that doesn't overlap the host region at all counts as
	// enclave-owned, the same way Gramine treats its one designated
	// untrusted range as the sole boundary: the enclave's own reserved
	// memory is everything else, not one specific backing array.
	assert.Equal(t, Inside, c.Classify(0xdeadbeef, 16))

	// A range that starts inside the host region and runs past its end is
	// straddling (rejected), not truncated.
	assert.Equal(t, Straddling, c.Classify(uintptr(ptrOf(hostBuf))+4090, 16))
}

func TestCopyToEnclave(t *testing.T) {
	c, enclaveBuf, hostBuf := newTestChecker(t)
	copy(hostBuf, "hello, host")

	dst := NewEnclavePtr[byte](ptrOf(enclaveBuf), len(enclaveBuf))
	src := NewHostPtr[byte](ptrOf(hostBuf), len(hostBuf))

	n, err := c.CopyToEnclave(dst, len(enclaveBuf), src, 11)
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	assert.Equal(t, "hello, host", string(enclaveBuf[:11]))
}

func TestCopyToEnclave_RejectsNonHostSource(t *testing.T) {
	c, enclaveBuf, _ := newTestChecker(t)
	dst := NewEnclavePtr[byte](ptrOf(enclaveBuf), len(enclaveBuf))

	// src "points" into the enclave region rather than host memory: not
	// entirely outside.
	straddling := NewHostPtr[byte](ptrOf(enclaveBuf), len(enclaveBuf))
	n, err := c.CopyToEnclave(dst, len(enclaveBuf), straddling, 16)
	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.True(t, c.Straddles(straddling.Addr(), 16) || c.EntirelyInside(straddling.Addr(), 16))
}

func TestCopyToEnclave_RejectsOversizedCopy(t *testing.T) {
	c, enclaveBuf, hostBuf := newTestChecker(t)
	dst := NewEnclavePtr[byte](ptrOf(enclaveBuf), 8)
	src := NewHostPtr[byte](ptrOf(hostBuf), len(hostBuf))

	n, err := c.CopyToEnclave(dst, 8, src, 9)
	require.Error(t, err)
	assert.Equal(t, 0, n)
}

func TestCopyToHost(t *testing.T) {
	c, enclaveBuf, hostBuf := newTestChecker(t)
	copy(enclaveBuf, "secret-ish")

	dst := NewHostPtr[byte](ptrOf(hostBuf), len(hostBuf))
	src := NewEnclavePtr[byte](ptrOf(enclaveBuf), len(enclaveBuf))

	err := c.CopyToHost(dst, src, 10)
	require.NoError(t, err)
	assert.Equal(t, "secret-ish", string(hostBuf[:10]))
}

func TestCopyPtrToEnclave(t *testing.T) {
	c, _, hostBuf := newTestChecker(t)

	p, err := CopyPtrToEnclave[byte](c, ptrOf(hostBuf), 16)
	require.NoError(t, err)
	assert.False(t, p.IsNil())
	assert.Equal(t, 16, p.Len())
}

func TestCopyPtrToEnclave_RejectsEnclavePointer(t *testing.T) {
	c, enclaveBuf, _ := newTestChecker(t)

	_, err := CopyPtrToEnclave[byte](c, ptrOf(enclaveBuf), 16)
	require.Error(t, err)
}

func TestHostPtrZeroValueIsNil(t *testing.T) {
	var p HostPtr[byte]
	assert.True(t, p.IsNil())
	assert.Equal(t, 0, p.Len())
}
