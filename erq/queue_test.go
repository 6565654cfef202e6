package erq

import (
	"sync"
	"testing"

	"github.com/joeycumines/go-ocall-gateway/boundary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRD(code uint32) *RequestDescriptor {
	return NewRequestDescriptor(code, boundary.HostPtr[byte]{})
}

func TestNewQueueRoundsCapacityToPowerOfTwo(t *testing.T) {
	q := NewQueue(5)
	assert.Equal(t, 8, q.Cap())
}

func TestEnqueueDequeueFIFOWithinOneProducer(t *testing.T) {
	q := NewQueue(4)
	rd1 := newTestRD(1)
	rd2 := newTestRD(2)

	require.True(t, q.Enqueue(rd1))
	require.True(t, q.Enqueue(rd2))

	got1, ok := q.Dequeue()
	require.True(t, ok)
	assert.Same(t, rd1, got1)

	got2, ok := q.Dequeue()
	require.True(t, ok)
	assert.Same(t, rd2, got2)

	_, ok = q.Dequeue()
	assert.False(t, ok, "P6 precondition: an empty queue reports empty, never blocks")
}

func TestEnqueueFailsWhenFull(t *testing.T) {
	q := NewQueue(2)
	require.True(t, q.Enqueue(newTestRD(1)))
	require.True(t, q.Enqueue(newTestRD(2)))
	assert.False(t, q.Enqueue(newTestRD(3)), "full queue must signal fallback, not block")
}

func TestConcurrentProducersConsumersExchangeEveryDescriptor(t *testing.T) {
	q := NewQueue(16)
	const n = 2000
	const producers = 8
	const consumers = 8

	var produced sync.WaitGroup
	produced.Add(producers)
	for p := 0; p < producers; p++ {
		go func() {
			defer produced.Done()
			for i := 0; i < n/producers; i++ {
				rd := newTestRD(uint32(i))
				for !q.Enqueue(rd) {
					// Backpressure in this test just means retry; real
					// callers fall back to direct-exit instead.
				}
			}
		}()
	}

	var seen int64
	var mu sync.Mutex
	var consumed sync.WaitGroup
	consumed.Add(consumers)
	stop := make(chan struct{})
	for c := 0; c < consumers; c++ {
		go func() {
			defer consumed.Done()
			for {
				if rd, ok := q.Dequeue(); ok {
					_ = rd
					mu.Lock()
					seen++
					mu.Unlock()
					continue
				}
				select {
				case <-stop:
					return
				default:
				}
			}
		}()
	}

	produced.Wait()
	for {
		mu.Lock()
		done := seen == n
		mu.Unlock()
		if done {
			break
		}
	}
	close(stop)
	consumed.Wait()

	assert.EqualValues(t, n, seen)
}
