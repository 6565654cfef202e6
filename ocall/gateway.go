package ocall

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/joeycumines/go-ocall-gateway/boundary"
	"github.com/joeycumines/go-ocall-gateway/erq"
	"github.com/joeycumines/go-ocall-gateway/ocallerr"
	"github.com/joeycumines/go-ocall-gateway/telemetry"
	"github.com/joeycumines/go-ocall-gateway/ustack"
	"github.com/joeycumines/go-ocall-gateway/xbl"
)

// Gateway is the OCALL marshaling layer: one instance per enclave
// (sharing one enclave/host Region pair and one HostDispatcher), handing
// out a private ustack.Stack to every calling goroutine.
//
// The "per enclave thread" untrusted stack of spec.md §4.2 is modeled as
// a sync.Pool of ustack.Stack from which each OCALL takes one Stack for
// its whole duration, since Go gives no stable handle on an OS thread
// (see package ustack's doc comment). This preserves the single-threaded-per-owner
// invariant the USA requires without pinning goroutines to OS threads.
type Gateway struct {
	checker    *boundary.Checker
	dispatcher HostDispatcher
	queue      atomic.Pointer[erq.Queue]
	hostArena  *ustack.Arena
	nextSlot   atomic.Int64
	stackPool  sync.Pool
	cfg        gatewayConfig
}

// NewGateway constructs a Gateway checking copies against the given
// enclave and host regions, with per-goroutine untrusted stacks (see
// acquireStack) carved out of stackArena.
//
// host and stackArena are deliberately separate parameters: host is the
// single fixed Host-Region the BMC checks every copy against, while
// stackArena is only the sub-range the Gateway itself bump-allocates
// stack slots from. A caller whose dispatcher also hands out host memory
// (e.g. an mmap_untrusted heap) gives that allocator a disjoint Sub of
// the same backing mapping and passes the whole mapping's Region as
// host, so both allocators' addresses pass BMC checks without being able
// to grow into each other's slots. Passing stackArena.Region() as host
// is fine when the Gateway is the only source of host addresses.
//
// The exitless queue starts unset (direct-exit only); call
// InitExitlessQueue once, before any OCALL, to enable the fast path.
func NewGateway(enclave, host boundary.Region, stackArena *ustack.Arena, dispatcher HostDispatcher, opts ...Option) *Gateway {
	cfg := defaultGatewayConfig()
	for _, o := range opts {
		o(&cfg)
	}

	g := &Gateway{
		checker:    boundary.New(enclave, host),
		dispatcher: dispatcher,
		hostArena:  stackArena,
		cfg:        cfg,
	}
	g.stackPool.New = func() any { return g.newPooledStack() }
	return g
}

// newPooledStack bump-allocates the next fixed-size stack slot out of
// hostArena. Once the arena's slots are exhausted -- a bound on
// concurrent in-flight OCALLs, not a per-call limit -- further calls get
// a permanently-exhausted Stack, which every allocation on it surfaces as
// the same USA-exhaustion error a real allocator failure would, rather
// than growing unboundedly or panicking.
func (g *Gateway) newPooledStack() *ustack.Stack {
	idx := g.nextSlot.Add(1) - 1
	start := int(idx) * g.cfg.stackSize
	if start < 0 || start+g.cfg.stackSize > len(g.hostArena.Bytes()) {
		return ustack.NewStack(&ustack.Arena{})
	}
	return ustack.NewStack(g.hostArena.Sub(start, g.cfg.stackSize))
}

// InitExitlessQueue sets g_rpc_queue exactly once (spec.md §4.4, §9):
// the first caller wins; subsequent calls are no-ops, matching the
// "write-once configuration" design note.
func (g *Gateway) InitExitlessQueue(q *erq.Queue) {
	g.queue.CompareAndSwap(nil, q)
}

// NewExitlessQueue is a convenience that builds a Queue at the Gateway's
// configured capacity and installs it via InitExitlessQueue.
func (g *Gateway) NewExitlessQueue() *erq.Queue {
	q := erq.NewQueue(g.cfg.queueCapacity)
	g.InitExitlessQueue(q)
	g.cfg.metrics.Queue.SetCapacity(q.Cap())
	return q
}

// Metrics exposes the Gateway's telemetry for external reporting.
func (g *Gateway) Metrics() *telemetry.Metrics { return g.cfg.metrics }

func (g *Gateway) acquireStack() *ustack.Stack {
	return g.stackPool.Get().(*ustack.Stack)
}

func (g *Gateway) releaseStack(s *ustack.Stack) {
	g.stackPool.Put(s)
}

// allocArgs reserves aligned space for one Args value on stack, overlays
// it, and returns both the live pointer and the byte-level HostPtr used
// to address it across the dispatch boundary.
func allocArgs[Args any](stack *ustack.Stack) (*Args, boundary.HostPtr[byte], error) {
	var zero Args
	n := int(unsafe.Sizeof(zero))
	align := int(unsafe.Alignof(zero))
	if align < ustack.MinAlign {
		align = ustack.MinAlign
	}
	p := stack.AllocAligned(n, align)
	if p.IsNil() {
		return nil, p, ocallerr.New("ustack.alloc", ocallerr.EPERM)
	}
	args := (*Args)(p.Pointer())
	*args = zero
	return args, p, nil
}

// exitlessOCALL implements spec.md §4.5 step 5: enqueue with fallback to
// direct-exit on a full (or absent) queue.
func (g *Gateway) exitlessOCALL(code Code, argsHost boundary.HostPtr[byte]) (int32, error) {
	q := g.queue.Load()
	if q == nil {
		return g.directExit(code, argsHost)
	}

	rd := erq.NewRequestDescriptor(uint32(code), argsHost, xbl.WithSpinIterations(g.cfg.spinIterations))
	if !q.Enqueue(rd) {
		g.cfg.logger.Log(telemetry.Entry{Level: telemetry.LevelWarn, Op: code.String(), Message: "erq full, falling back to direct exit"})
		g.cfg.metrics.RecordFallback()
		return g.directExit(code, argsHost)
	}
	g.cfg.metrics.Queue.RecordEnqueue()
	g.cfg.metrics.Queue.RecordExitless()

	_, err := rd.Lock.Wait()
	g.cfg.metrics.Queue.RecordDequeue()
	if err != nil {
		return 0, ocallerr.Wrap(code.String(), ocallerr.CodeOf(err), err)
	}
	return rd.Result(), nil
}

func (g *Gateway) directExit(code Code, argsHost boundary.HostPtr[byte]) (int32, error) {
	res, err := g.dispatcher.Ocall(code, argsHost)
	if err != nil {
		return 0, ocallerr.Wrap(code.String(), ocallerr.CodeOf(err), err)
	}
	return res, nil
}

// copyStringIn copies a Go string plus its NUL terminator onto stack, per
// spec.md §4.5 step 3 ("null-terminated strings with their terminator
// included").
func copyStringIn(stack *ustack.Stack, s string) (boundary.HostPtr[byte], bool) {
	return stack.CopyIn(append([]byte(s), 0))
}
