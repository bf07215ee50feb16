package metrics

import "time"

// The helpers below tolerate a nil receiver so callers can run without a
// metrics registry.

func (m *Metrics) DocIndexed(malformed bool) {
	if m == nil {
		return
	}
	m.DocsIndexedTotal.Inc()
	if malformed {
		m.MalformedDocsTotal.Inc()
	}
}

func (m *Metrics) Spill(status string) {
	if m == nil {
		return
	}
	m.PartialSpillsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) AccumulatorSize(terms int) {
	if m == nil {
		return
	}
	m.AccumulatorTerms.Set(float64(terms))
}

func (m *Metrics) Merged(d time.Duration, skipped int) {
	if m == nil {
		return
	}
	m.MergeDuration.Observe(d.Seconds())
	m.SkippedLinesTotal.WithLabelValues("merge").Add(float64(skipped))
}

func (m *Metrics) Loaded(source string, d time.Duration, skipped int) {
	if m == nil {
		return
	}
	m.SearchLatency.WithLabelValues(source).Observe(d.Seconds())
	m.SkippedLinesTotal.WithLabelValues("load").Add(float64(skipped))
}

func (m *Metrics) Query(resultType string, results int) {
	if m == nil {
		return
	}
	m.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	m.SearchResultsCount.Observe(float64(results))
}

func (m *Metrics) Cache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.Inc()
		return
	}
	m.CacheMissesTotal.Inc()
}
