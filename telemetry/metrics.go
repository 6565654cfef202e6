package telemetry

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-catrate"
)

// LatencyMetrics tracks OCALL latency distribution using the P-Square
// streaming quantile algorithm, one estimator per tracked percentile.
type LatencyMetrics struct {
	mu    sync.Mutex
	p50   *psquareQuantile
	p90   *psquareQuantile
	p95   *psquareQuantile
	p99   *psquareQuantile
	count int64
	sum   time.Duration
	max   time.Duration
}

// Record adds one OCALL latency observation.
func (l *LatencyMetrics) Record(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.p50 == nil {
		l.p50 = newPSquareQuantile(0.50)
		l.p90 = newPSquareQuantile(0.90)
		l.p95 = newPSquareQuantile(0.95)
		l.p99 = newPSquareQuantile(0.99)
	}

	v := float64(d)
	l.p50.Update(v)
	l.p90.Update(v)
	l.p95.Update(v)
	l.p99.Update(v)

	atomic.AddInt64(&l.count, 1)
	l.sum += d
	if d > l.max {
		l.max = d
	}
}

// Snapshot is a point-in-time copy of LatencyMetrics, safe to read after
// the lock protecting the live estimators has been released.
type Snapshot struct {
	Count int64
	Sum   time.Duration
	Mean  time.Duration
	Max   time.Duration
	P50   time.Duration
	P90   time.Duration
	P95   time.Duration
	P99   time.Duration
}

// Snapshot computes the current percentile estimates.
func (l *LatencyMetrics) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := atomic.LoadInt64(&l.count)
	s := Snapshot{Count: count, Sum: l.sum, Max: l.max}
	if count > 0 {
		s.Mean = l.sum / time.Duration(count)
	}
	if l.p50 != nil {
		s.P50 = time.Duration(l.p50.Quantile())
		s.P90 = time.Duration(l.p90.Quantile())
		s.P95 = time.Duration(l.p95.Quantile())
		s.P99 = time.Duration(l.p99.Quantile())
	}
	return s
}

// QueueMetrics tracks the exitless queue's occupancy and the split
// between requests served via the fast (exitless) and slow (direct-exit)
// paths.
type QueueMetrics struct {
	depth        atomic.Int64
	capacity     atomic.Int64
	exitlessHits atomic.Int64
	directExits  atomic.Int64
}

// SetCapacity records the configured ring size, for depth-as-fraction
// reporting.
func (q *QueueMetrics) SetCapacity(n int) { q.capacity.Store(int64(n)) }

// RecordEnqueue and RecordDequeue track live occupancy; RecordExitless
// and RecordDirectExit track the fast/slow path split described by
// spec.md's P6 fallback property.
func (q *QueueMetrics) RecordEnqueue()   { q.depth.Add(1) }
func (q *QueueMetrics) RecordDequeue()   { q.depth.Add(-1) }
func (q *QueueMetrics) RecordExitless()  { q.exitlessHits.Add(1) }
func (q *QueueMetrics) RecordDirectExit() { q.directExits.Add(1) }

func (q *QueueMetrics) Depth() int64        { return q.depth.Load() }
func (q *QueueMetrics) Capacity() int64     { return q.capacity.Load() }
func (q *QueueMetrics) ExitlessHits() int64 { return q.exitlessHits.Load() }
func (q *QueueMetrics) DirectExits() int64  { return q.directExits.Load() }

// Metrics aggregates everything the Gateway reports about its own
// behaviour: per-OCALL latency, queue occupancy and path split, and a
// sliding-window view of how often the queue-full fallback fires.
type Metrics struct {
	Latency LatencyMetrics
	Queue   QueueMetrics

	// backpressure is a catrate limiter repurposed as a pure observer:
	// every fallback event is recorded via Allow, and the returned
	// "next allowed" time is discarded. What's useful is the sliding
	// window catrate already maintains per category, queried back out
	// through BackpressureRate.
	backpressure *catrate.Limiter
}

// NewMetrics constructs a Metrics with a one-minute backpressure window.
func NewMetrics() *Metrics {
	return &Metrics{
		backpressure: catrate.NewLimiter(map[time.Duration]int{
			time.Minute: 1 << 30, // effectively unbounded; this limiter is used as an event counter, not an enforcer
		}),
	}
}

// RecordFallback reports one ERQ-full, direct-exit fallback event and
// returns whether the fallback rate over the trailing window has reached
// the configured limit -- in the default configuration this never
// happens, since the limiter here is used purely as a sliding-window
// counter rather than an enforcement mechanism.
func (m *Metrics) RecordFallback() (throttled bool) {
	m.Queue.RecordDirectExit()
	if m.backpressure == nil {
		return false
	}
	_, ok := m.backpressure.Allow("erq_full")
	return !ok
}
