package xbl

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLockIsUnlocked(t *testing.T) {
	l := New()
	assert.Equal(t, Unlocked, l.State())
}

func TestAcquireThenFastRelease(t *testing.T) {
	l := New(WithSpinIterations(1_000_000))
	l.Acquire()
	assert.Equal(t, LockedNoWaiters, l.State())

	done := make(chan struct{})
	go func() {
		defer close(done)
		timedOut, err := l.Wait()
		assert.NoError(t, err)
		assert.False(t, timedOut, "fast release should be observed within the spin phase")
	}()

	// Give the spinner a moment to start looping before releasing, without
	// relying on exact timing for correctness.
	time.Sleep(time.Millisecond)
	l.Release()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return after Release")
	}
	assert.Equal(t, LockedNoWaiters, l.State(), "Wait re-acquires the lock once it observes Unlocked")
}

func TestWaitPromotesAndBlocksUntilRelease(t *testing.T) {
	// A single spin iteration forces Wait to promote to LockedWithWaiters
	// almost immediately, exercising the futex path on every platform.
	l := New(WithSpinIterations(1))
	l.Acquire()

	done := make(chan struct{})
	var timedOut bool
	var waitErr error
	go func() {
		defer close(done)
		timedOut, waitErr = l.Wait()
	}()

	time.Sleep(10 * time.Millisecond)
	assert.NotEqual(t, Unlocked, l.State(), "lock must still be held while the waiter blocks")

	l.Release()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return after Release woke it")
	}
	require.NoError(t, waitErr)
	assert.True(t, timedOut)
	assert.Equal(t, LockedNoWaiters, l.State(), "Wait re-acquires the lock once it observes Unlocked")
}

func TestConcurrentAcquireWaitReleaseCycles(t *testing.T) {
	l := New(WithSpinIterations(4))
	const cycles = 200

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < cycles; i++ {
			l.Acquire()
			go func() {
				// Simulate a worker finishing the request and releasing.
				l.Release()
			}()
			_, err := l.Wait()
			assert.NoError(t, err)
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("cycles did not complete; possible missed wakeup")
	}
}

func TestReleaseWithoutWaitersDoesNotPanic(t *testing.T) {
	l := New()
	l.Acquire()
	assert.NotPanics(t, func() { l.Release() })
	assert.Equal(t, Unlocked, l.State())
}
