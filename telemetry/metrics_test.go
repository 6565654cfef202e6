package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLatencyMetricsSnapshotTracksBasicStats(t *testing.T) {
	var l LatencyMetrics
	for i := 1; i <= 20; i++ {
		l.Record(time.Duration(i) * time.Millisecond)
	}

	snap := l.Snapshot()
	assert.EqualValues(t, 20, snap.Count)
	assert.Equal(t, 20*time.Millisecond, snap.Max)
	assert.Greater(t, snap.P99, time.Duration(0))
	assert.LessOrEqual(t, snap.P50, snap.P99)
}

func TestQueueMetricsTracksDepthAndSplit(t *testing.T) {
	var q QueueMetrics
	q.SetCapacity(64)
	q.RecordEnqueue()
	q.RecordEnqueue()
	q.RecordDequeue()
	q.RecordExitless()
	q.RecordDirectExit()

	assert.EqualValues(t, 1, q.Depth())
	assert.EqualValues(t, 64, q.Capacity())
	assert.EqualValues(t, 1, q.ExitlessHits())
	assert.EqualValues(t, 1, q.DirectExits())
}

func TestMetricsRecordFallbackIncrementsDirectExitCounter(t *testing.T) {
	m := NewMetrics()
	throttled := m.RecordFallback()
	assert.False(t, throttled)
	assert.EqualValues(t, 1, m.Queue.DirectExits())
}

func TestPSquareQuantileConvergesOnUniformData(t *testing.T) {
	q := newPSquareQuantile(0.5)
	for i := 1; i <= 1000; i++ {
		q.Update(float64(i))
	}
	median := q.Quantile()
	assert.InDelta(t, 500, median, 50)
}
