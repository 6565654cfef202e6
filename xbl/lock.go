package xbl

import (
	"errors"
	"runtime"
	"sync/atomic"

	"github.com/joeycumines/go-ocall-gateway/ocallerr"
)

// Lock is one Request Descriptor's XBL word plus the platform wait/wake
// backend. A Lock must not be copied after Acquire is called; embed it by
// pointer in a Request Descriptor (see package erq).
type Lock struct {
	word    uint32
	backend waitWaker
	opts    lockOptions
}

// New constructs a Lock in the Unlocked state.
func New(opts ...Option) *Lock {
	l := &Lock{backend: newBackend(), opts: defaultLockOptions()}
	for _, o := range opts {
		o(&l.opts)
	}
	return l
}

// State returns the lock's current state.
func (l *Lock) State() State {
	return State(atomic.LoadUint32(&l.word))
}

func (l *Lock) cas(from, to State) bool {
	return atomic.CompareAndSwapUint32(&l.word, uint32(from), uint32(to))
}

// Acquire implements spec.md §4.3 step 1: the enclave thread initializes
// the lock and immediately claims sole ownership. This is a plain store,
// not a CAS, because the enclave thread is guaranteed to be the only
// party that can observe the lock before it is published to the ERQ.
func (l *Lock) Acquire() {
	atomic.StoreUint32(&l.word, uint32(LockedNoWaiters))
}

// Release implements the worker side of spec.md §4.3 step 2: the caller
// has already stored the Request Descriptor's result, and Release then
// stores Unlocked with release semantics (via atomic.SwapUint32) and, if
// the prior state was LockedWithWaiters, wakes the enclave thread.
func (l *Lock) Release() {
	prev := State(atomic.SwapUint32(&l.word, uint32(Unlocked)))
	if prev == LockedWithWaiters {
		l.backend.wake(&l.word)
	}
}

// Wait implements spec.md §4.3 steps 3-5: a bounded CAS spin for the
// common case where the worker finishes quickly, then a promote-and-futex
// loop for the slow case. It returns once the lock is observed Unlocked.
//
// timedOut reports whether the spin phase alone was insufficient (purely
// informational, for telemetry — it is not an error). err is non-nil only
// for the fatal case of step 5: a futex wait failing with anything other
// than a benign value-mismatch race.
func (l *Lock) Wait() (timedOut bool, err error) {
	for i := 0; i < l.opts.spinIterations; i++ {
		if l.cas(Unlocked, LockedNoWaiters) {
			return false, nil
		}
		runtime.Gosched()
	}

	for {
		// Promote so the worker knows to wake us. If this fails because
		// the word is already Unlocked -- the worker raced ahead of our
		// last spin attempt -- reacquire directly and skip the futex
		// call entirely (spec.md §4.3 correctness note (b)).
		if !l.cas(LockedNoWaiters, LockedWithWaiters) {
			if l.cas(Unlocked, LockedNoWaiters) {
				return true, nil
			}
			// Otherwise the word was already LockedWithWaiters (a
			// previous iteration promoted it and we're looping after a
			// spurious wake); fall through to wait again.
		}

		waitErr := l.backend.wait(&l.word, uint32(LockedWithWaiters))
		if waitErr != nil {
			if errors.Is(waitErr, errAgain) {
				continue
			}
			return true, ocallerr.Wrap("xbl.wait", ocallerr.EFAULT, waitErr)
		}

		if l.cas(Unlocked, LockedNoWaiters) {
			return true, nil
		}
		// Spurious wake with the word still LockedWithWaiters: loop.
	}
}
