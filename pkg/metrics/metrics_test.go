package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.DocIndexed(true)
	m.Spill("ok")
	m.AccumulatorSize(3)
	m.Merged(time.Second, 2)
	m.Loaded("canonical", time.Millisecond, 1)
	m.Query("hit", 5)
	m.Cache(true)
}

func TestRecordHelpers(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())
	m.DocIndexed(false)
	m.DocIndexed(true)
	m.Spill("ok")
	m.Spill("ok")
	m.Spill("error")
	m.Cache(true)
	m.Cache(false)
	m.Cache(false)

	if got := testutil.ToFloat64(m.DocsIndexedTotal); got != 2 {
		t.Errorf("docs indexed = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.MalformedDocsTotal); got != 1 {
		t.Errorf("malformed docs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.PartialSpillsTotal.WithLabelValues("ok")); got != 2 {
		t.Errorf("ok spills = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CacheMissesTotal); got != 2 {
		t.Errorf("cache misses = %v, want 2", got)
	}
}
