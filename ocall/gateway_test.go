package ocall

import (
	"runtime"
	"sync"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/go-ocall-gateway/boundary"
	"github.com/joeycumines/go-ocall-gateway/ocallerr"
	"github.com/joeycumines/go-ocall-gateway/ustack"
)

// mockDispatcher is a minimal HostDispatcher used to exercise Gateway
// behavior without a real host process. Its MmapUntrusted bump-allocates
// out of a Sub of the same arena the test's Gateway was built over, so
// addresses it hands back satisfy the same Checker the Gateway itself
// checks against -- exactly the sharing discipline NewGateway documents.
type mockDispatcher struct {
	mu          sync.Mutex
	heap        *ustack.Arena
	heapTop     int
	munmapCalls int
	ocallCalls  map[Code]int
	handle      func(code Code, p boundary.HostPtr[byte]) int32
}

func newMockDispatcher(heap *ustack.Arena) *mockDispatcher {
	return &mockDispatcher{heap: heap, ocallCalls: map[Code]int{}}
}

func (m *mockDispatcher) Ocall(code Code, p boundary.HostPtr[byte]) (int32, error) {
	m.mu.Lock()
	m.ocallCalls[code]++
	m.mu.Unlock()
	if m.handle != nil {
		return m.handle(code, p), nil
	}
	return 0, nil
}

func (m *mockDispatcher) MmapUntrusted(size int) (boundary.HostPtr[byte], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.heapTop+size > len(m.heap.Bytes()) {
		return boundary.HostPtr[byte]{}, ocallerr.New("mmap_untrusted", ocallerr.EFAULT)
	}
	off := m.heapTop
	m.heapTop += size
	return boundary.NewHostPtr[byte](unsafe.Pointer(&m.heap.Bytes()[off]), size), nil
}

func (m *mockDispatcher) MunmapUntrusted(boundary.HostPtr[byte]) error {
	m.mu.Lock()
	m.munmapCalls++
	m.mu.Unlock()
	return nil
}

// testGateway bundles a Gateway with the pieces a test needs to reach into
// its host memory directly (the mock dispatcher and the raw enclave
// buffer), built per NewGateway's documented sharing discipline: the
// stack arena and the dispatcher's heap are disjoint Subs of one bigger
// arena, and the Checker's host Region spans the whole thing.
type testGateway struct {
	gw         *Gateway
	dispatcher *mockDispatcher
	enclaveBuf []byte
}

func newTestGateway(t *testing.T, stackSize int, opts ...Option) *testGateway {
	t.Helper()
	enclaveBuf := make([]byte, 8192)

	const half = 2 * 1024 * 1024
	bigArena, err := ustack.NewArena(2 * half)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bigArena.Close() })

	// Generously sized relative to stackSize so sync.Pool's GC-driven
	// churn can never force TestGateway_StackHygieneAcrossManyCalls into
	// the exhausted-arena fallback path by coincidence.
	stackArena := bigArena.Sub(0, half)
	heapArena := bigArena.Sub(half, half)

	dispatcher := newMockDispatcher(heapArena)
	allOpts := append([]Option{WithStackSize(stackSize)}, opts...)
	gw := NewGateway(boundary.NewRegion(enclaveBuf), bigArena.Region(), stackArena, dispatcher, allOpts...)

	return &testGateway{gw: gw, dispatcher: dispatcher, enclaveBuf: enclaveBuf}
}

// P1: a buffer that starts inside the enclave region, whether or not it
// also runs past the enclave's end, must be rejected outright -- it must
// never reach the dispatcher.
func TestWriteHostBuf_RejectsStraddlingBuffer(t *testing.T) {
	tg := newTestGateway(t, 4096)

	straddling := boundary.NewHostPtr[byte](unsafe.Pointer(&tg.enclaveBuf[len(tg.enclaveBuf)-4]), 64)

	n, err := tg.gw.WriteHostBuf(3, straddling)
	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, tg.dispatcher.ocallCalls[CodeWrite], "dispatcher must never see a rejected buffer")
}

// P2: Read must clamp a dispatcher-reported count to the caller's actual
// buffer capacity rather than trusting it and overrunning the enclave copy.
func TestRead_ClampsOversizedResult(t *testing.T) {
	tg := newTestGateway(t, 4096)
	const want = 16
	pattern := make([]byte, 4096)
	for i := range pattern {
		pattern[i] = byte(i)
	}

	tg.dispatcher.handle = func(code Code, p boundary.HostPtr[byte]) int32 {
		if code != CodeRead {
			return 0
		}
		args := (*ReadArgs)(p.Pointer())
		hostBuf := unsafe.Slice((*byte)(args.Buf.Pointer()), args.Buf.Len())
		copy(hostBuf, pattern)
		// Misbehaving host: claims far more was read than the caller asked for.
		args.NumRead = int32(len(pattern))
		return 0
	}

	buf := make([]byte, want)
	n, err := tg.gw.Read(5, buf)
	require.NoError(t, err)
	assert.Equal(t, want, n, "P2: result must be clamped to the caller's buffer capacity")
	assert.Equal(t, pattern[:want], buf)
}

// P3: every OCALL must restore the untrusted stack's top to its value
// before the call, success or failure -- otherwise a small, fixed
// stack could never outlive more than a few calls. Driving far more
// iterations than would fit in one unreset stack is a direct test of that
// restoration, without reaching into ustack's unexported state from here.
func TestGateway_StackHygieneAcrossManyCalls(t *testing.T) {
	tg := newTestGateway(t, 128)

	for i := 0; i < 500; i++ {
		_, err := tg.gw.Write(1, []byte("hello"))
		require.NoError(t, err, "iteration %d: stack must have been reset by the prior call", i)
	}
}

// P6: routing an OCALL through the exitless queue must produce the same
// result a direct exit would, given an equivalent dispatcher response.
func TestExitlessOCALL_MatchesDirectExit(t *testing.T) {
	tg := newTestGateway(t, 4096)
	tg.dispatcher.handle = func(code Code, p boundary.HostPtr[byte]) int32 {
		if code == CodeLoadDebug {
			return 7
		}
		return 0
	}

	direct, err := tg.gw.LoadDebug("direct")
	require.NoError(t, err)
	assert.EqualValues(t, 7, direct)

	q := tg.gw.NewExitlessQueue()
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			rd, ok := q.Dequeue()
			if !ok {
				runtime.Gosched()
				continue
			}
			res, _ := tg.dispatcher.Ocall(Code(rd.Code), rd.ArgsPtr)
			rd.SetResult(res)
			rd.Lock.Release()
		}
	}()
	defer func() {
		close(stop)
		wg.Wait()
	}()

	viaQueue, err := tg.gw.LoadDebug("via-queue")
	require.NoError(t, err)
	assert.Equal(t, direct, viaQueue, "P6: exitless and direct-exit paths must agree")
}

// P8: GetAttestation copies all four host-owned blobs into fresh enclave
// memory and frees every corresponding host region.
func TestGetAttestation_CopiesAllBlobsAndFreesHostMemory(t *testing.T) {
	tg := newTestGateway(t, 4096)

	blobs := map[string][]byte{
		"quote": []byte("quote-bytes"),
		"ias":   []byte("ias-report"),
		"sig":   []byte("signature"),
		"cert":  []byte("cert-chain"),
	}

	tg.dispatcher.handle = func(code Code, p boundary.HostPtr[byte]) int32 {
		if code != CodeGetAttestation {
			return 0
		}
		args := (*GetAttestationArgs)(p.Pointer())

		put := func(b []byte) (boundary.HostPtr[byte], int32) {
			hp, err := tg.dispatcher.MmapUntrusted(len(b))
			if err != nil {
				return boundary.HostPtr[byte]{}, 0
			}
			copy(unsafe.Slice((*byte)(hp.Pointer()), len(b)), b)
			return hp, int32(len(b))
		}

		args.Quote, args.QuoteLen = put(blobs["quote"])
		args.IASReport, args.IASLen = put(blobs["ias"])
		args.Signature, args.SigLen = put(blobs["sig"])
		args.CertChain, args.CertLen = put(blobs["cert"])
		return 0
	}

	att, err := tg.gw.GetAttestation([]byte("report-data"))
	require.NoError(t, err)
	require.NotNil(t, att)
	assert.Equal(t, blobs["quote"], att.Quote)
	assert.Equal(t, blobs["ias"], att.IASReport)
	assert.Equal(t, blobs["sig"], att.Signature)
	assert.Equal(t, blobs["cert"], att.CertChain)
	assert.Equal(t, 4, tg.dispatcher.munmapCalls, "P8: every host blob must be freed after copy-out")
}

// P7: the exit OCALL never returns to its caller -- a well-behaved host
// never resumes the enclave after an exit exchange, so the Gateway keeps
// re-issuing it forever rather than returning control.
func TestExit_NeverReturns(t *testing.T) {
	tg := newTestGateway(t, 4096)
	calls := make(chan struct{}, 8)
	tg.dispatcher.handle = func(code Code, p boundary.HostPtr[byte]) int32 {
		if code == CodeExit {
			select {
			case calls <- struct{}{}:
			default:
			}
		}
		return 0
	}

	returned := make(chan struct{})
	go func() {
		tg.gw.Exit(0, false)
		close(returned)
	}()

	select {
	case <-calls:
	case <-time.After(time.Second):
		t.Fatal("exit OCALL was never dispatched")
	}

	select {
	case <-returned:
		t.Fatal("P7: Exit must never return")
	case <-time.After(50 * time.Millisecond):
	}
}
