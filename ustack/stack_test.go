package ustack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStack(t *testing.T, size int) *Stack {
	t.Helper()
	arena, err := NewArena(size)
	require.NoError(t, err)
	t.Cleanup(func() { _ = arena.Close() })
	return NewStack(arena)
}

func TestAllocAndReset(t *testing.T) {
	s := newTestStack(t, 4096)

	p1 := s.Alloc(64)
	require.False(t, p1.IsNil())
	topAfterFirst := s.top

	guard := s.Mark()
	p2 := s.Alloc(128)
	require.False(t, p2.IsNil())
	assert.Greater(t, s.top, topAfterFirst)

	guard.Release()
	assert.Equal(t, topAfterFirst, s.top, "P3: USA top must be restored after release")

	// Releasing twice is a no-op, not a double-reset.
	guard.Release()
	assert.Equal(t, topAfterFirst, s.top)
}

func TestAllocAlignedEnforcesMinimumAlignment(t *testing.T) {
	s := newTestStack(t, 4096)
	_ = s.Alloc(1) // misalign the cursor by one byte

	p := s.AllocAligned(16, 1)
	require.False(t, p.IsNil())
	assert.Zero(t, p.Addr()%MinAlign, "allocations are always at least 4-byte aligned for XBL descriptors")
}

func TestAllocExhaustionReturnsNullPointer(t *testing.T) {
	s := newTestStack(t, 64)

	p := s.Alloc(1024)
	assert.True(t, p.IsNil())
	assert.Zero(t, s.top, "a failed allocation must not move the bump pointer")
}

func TestCopyIn(t *testing.T) {
	s := newTestStack(t, 4096)

	p, ok := s.CopyIn([]byte("hello"))
	require.True(t, ok)
	require.False(t, p.IsNil())
	assert.Equal(t, 5, p.Len())
}

func TestCopyInEmptyIsNoopSuccess(t *testing.T) {
	s := newTestStack(t, 4096)
	before := s.top
	_, ok := s.CopyIn(nil)
	assert.True(t, ok)
	assert.Equal(t, before, s.top)
}

func TestHighWaterTracksPeakUsage(t *testing.T) {
	s := newTestStack(t, 4096)
	_ = s.Alloc(100)
	guard := s.Mark()
	_ = s.Alloc(900)
	guard.Release()

	assert.GreaterOrEqual(t, s.HighWater(), 1000)

	s.ResetHighWater()
	assert.Equal(t, s.top, s.HighWater())
}
