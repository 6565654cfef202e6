package erq

import "sync/atomic"

// slot holds one ring cell plus a sequence number used to hand the cell
// off between producers and consumers without ever blocking either side.
// The sequence-per-slot design is the classic lock-free bounded MPMC
// queue shape; this package generalizes it from the single-threaded,
// mutex-guarded power-of-2 ring in the retrieval pack's catrate package
// (whose ringBuffer is deliberately not safe for concurrent use, relying
// on its caller's own mutex) into a ring where every slot carries its own
// CAS-protected sequence counter, so multiple producers and consumers can
// claim distinct slots concurrently without a shared lock.
type slot struct {
	seq atomic.Uint64
	rd  *RequestDescriptor
}

// Queue is a bounded multi-producer multi-consumer ring of
// *RequestDescriptor, sized to a power of two. Enqueue never blocks: a
// full queue returns false so the caller can fall back to a direct
// enclave-exit call, per spec.md §4.4.
type Queue struct {
	mask  uint64
	slots []slot
	head  atomic.Uint64 // next slot a producer will claim
	tail  atomic.Uint64 // next slot a consumer will claim
}

// NewQueue constructs a Queue with room for at least capacity requests,
// rounded up to the next power of two.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	size := 1
	for size < capacity {
		size <<= 1
	}
	q := &Queue{mask: uint64(size - 1), slots: make([]slot, size)}
	for i := range q.slots {
		q.slots[i].seq.Store(uint64(i))
	}
	return q
}

// Cap reports the ring's fixed capacity.
func (q *Queue) Cap() int {
	return len(q.slots)
}

// Enqueue publishes rd to the ring. It returns false iff the queue is
// currently full, in which case rd was not published and the caller
// should fall back to a direct enclave-exit call.
func (q *Queue) Enqueue(rd *RequestDescriptor) bool {
	for {
		head := q.head.Load()
		s := &q.slots[head&q.mask]
		seq := s.seq.Load()
		diff := int64(seq) - int64(head)
		switch {
		case diff == 0:
			if q.head.CompareAndSwap(head, head+1) {
				s.rd = rd
				s.seq.Store(head + 1)
				return true
			}
		case diff < 0:
			// The slot at this position has not been freed by the last
			// consumer to pass through it: the ring is full.
			return false
		default:
			// Another producer has already claimed this slot; retry.
		}
	}
}

// Dequeue claims the next published RequestDescriptor, if any. It returns
// false iff the queue is currently empty.
func (q *Queue) Dequeue() (*RequestDescriptor, bool) {
	for {
		tail := q.tail.Load()
		s := &q.slots[tail&q.mask]
		seq := s.seq.Load()
		diff := int64(seq) - int64(tail+1)
		switch {
		case diff == 0:
			if q.tail.CompareAndSwap(tail, tail+1) {
				rd := s.rd
				s.rd = nil
				s.seq.Store(tail + q.mask + 1)
				return rd, true
			}
		case diff < 0:
			// Nothing has been published to this slot yet: the ring is
			// empty.
			return nil, false
		default:
			// Another consumer has already claimed this slot; retry.
		}
	}
}
