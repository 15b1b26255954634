package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "test")

	p.ObserveProgress(42, 7)
	p.ObserveTopCount(3)
	p.ObserveSelection(2 * time.Millisecond)
	p.IncCheckpointSaves()
	p.IncCheckpointSaves()
	p.IncWriterErrors("sqlite")

	assert.InDelta(t, 42, testutil.ToFloat64(p.iterations), 0)
	assert.InDelta(t, 7, testutil.ToFloat64(p.distinctDraws), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(p.topCount), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(p.checkpointSaves), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(p.writerErrors.WithLabelValues("sqlite")), 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 6)
}
