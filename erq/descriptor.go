package erq

import (
	"sync/atomic"

	"github.com/joeycumines/go-ocall-gateway/boundary"
	"github.com/joeycumines/go-ocall-gateway/xbl"
)

// RequestDescriptor is the record the Gateway publishes to the queue and
// a worker consumes: an OCALL code, a pointer to the code-specific args
// struct (allocated on the caller's untrusted stack), the lock the two
// sides hand off ownership through, and the result the worker writes back.
//
// NewRequestDescriptor allocates the descriptor and its Lock as ordinary
// Go memory; they are not placed on the caller's untrusted stack or in
// the host Region. A RequestDescriptor is created at OCALL entry, owned
// exclusively by that goroutine until it is enqueued, then
// aliased by exactly one worker until the worker releases Lock. Only the
// worker may write Result; only the original caller may read it, and only
// after observing the lock unlocked.
type RequestDescriptor struct {
	Code    uint32
	ArgsPtr boundary.HostPtr[byte]
	Lock    *xbl.Lock
	result  int32
}

// NewRequestDescriptor builds a descriptor with its lock pre-acquired
// (spec.md §4.3 step 1), ready to publish to a Queue.
func NewRequestDescriptor(code uint32, args boundary.HostPtr[byte], opts ...xbl.Option) *RequestDescriptor {
	l := xbl.New(opts...)
	l.Acquire()
	return &RequestDescriptor{Code: code, ArgsPtr: args, Lock: l}
}

// SetResult is called by the worker servicing the request, strictly
// before it releases Lock.
func (rd *RequestDescriptor) SetResult(v int32) {
	atomic.StoreInt32(&rd.result, v)
}

// Result is read by the original caller strictly after observing Lock
// unlocked, which provides the acquire edge against the worker's release.
func (rd *RequestDescriptor) Result() int32 {
	return atomic.LoadInt32(&rd.result)
}
