//go:build linux

package hostsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/sys/unix"

	"github.com/joeycumines/go-ocall-gateway/boundary"
	"github.com/joeycumines/go-ocall-gateway/ocall"
	"github.com/joeycumines/go-ocall-gateway/ustack"
)

// newTestGateway wires a real ocall.Gateway to a real Simulator, splitting
// one backing arena into a stack region and a heap region exactly as
// ocall.NewGateway's doc comment prescribes.
func newTestGateway(t *testing.T) (*ocall.Gateway, *Simulator) {
	t.Helper()
	const half = 4 * 1024 * 1024 // must exceed ocall.DefaultStackSize so at least one stack slot fits
	arena, err := ustack.NewArena(2 * half)
	require.NoError(t, err)
	t.Cleanup(func() { _ = arena.Close() })

	stackArena := arena.Sub(0, half)
	heapArena := arena.Sub(half, half)

	sim, err := New(heapArena)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sim.Close() })

	enclaveBuf := make([]byte, 64*1024)
	gw := ocall.NewGateway(boundary.NewRegion(enclaveBuf), arena.Region(), stackArena, sim)
	return gw, sim
}

func TestSimulator_FileRoundTrip(t *testing.T) {
	gw, _ := newTestGateway(t)

	fd, err := gw.Open("/greeting.txt", int32(unix.O_RDWR|unix.O_CREAT|unix.O_TRUNC), 0o644)
	require.NoError(t, err)
	require.GreaterOrEqual(t, fd, int32(0))

	n, err := gw.Write(fd, []byte("hello, enclave"))
	require.NoError(t, err)
	assert.Equal(t, len("hello, enclave"), n)

	_, err = gw.Lseek(fd, 0, 0)
	require.NoError(t, err)

	buf := make([]byte, 64)
	n, err = gw.Read(fd, buf)
	require.NoError(t, err)
	assert.Equal(t, "hello, enclave", string(buf[:n]))

	size, _, _, err := gw.Fstat(fd)
	require.NoError(t, err)
	assert.EqualValues(t, len("hello, enclave"), size)

	res, err := gw.Close(fd)
	require.NoError(t, err)
	assert.Zero(t, res)
}

func TestSimulator_CpuidIsFabricatedButStable(t *testing.T) {
	gw, _ := newTestGateway(t)

	eax1, ebx1, ecx1, edx1, err := gw.Cpuid(0, 0)
	require.NoError(t, err)
	eax2, ebx2, ecx2, edx2, err := gw.Cpuid(0, 0)
	require.NoError(t, err)

	assert.Equal(t, eax1, eax2)
	assert.Equal(t, ebx1, ebx2)
	assert.Equal(t, ecx1, ecx2)
	assert.Equal(t, edx1, edx2)
}

func TestSimulator_GetAttestationEchoesReportData(t *testing.T) {
	gw, _ := newTestGateway(t)

	att, err := gw.GetAttestation([]byte("nonce-123"))
	require.NoError(t, err)
	require.NotNil(t, att)
	assert.Contains(t, string(att.Quote), "nonce-123")
	assert.NotEmpty(t, att.IASReport)
	assert.NotEmpty(t, att.Signature)
	assert.NotEmpty(t, att.CertChain)
}

func TestSimulator_EventfdRoundTrip(t *testing.T) {
	gw, _ := newTestGateway(t)

	fd, err := gw.Eventfd(0, 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, fd, int32(0))

	_, _ = gw.Close(fd)
}
