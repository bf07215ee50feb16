package main

import (
	"fmt"
	"io"
	"math"
	"slices"
	"sync"
	"time"
)

// stats collects request outcomes from concurrent workers.
type stats struct {
	mu        sync.Mutex
	latencies []time.Duration
	codes     map[int]int
	failures  int
	zeroHits  int
}

func newStats() *stats {
	return &stats{codes: make(map[int]int)}
}

// record stores one request. code 0 marks a transport error.
func (s *stats) record(d time.Duration, code int, zeroHits bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code == 0 {
		s.failures++
		return
	}
	s.codes[code]++
	s.latencies = append(s.latencies, d)
	if zeroHits {
		s.zeroHits++
	}
}

func (s *stats) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.latencies) + s.failures
}

func (s *stats) write(w io.Writer, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := len(s.latencies) + s.failures
	ok := 0
	for code, n := range s.codes {
		if code >= 200 && code < 300 {
			ok += n
		}
	}
	fmt.Fprintln(w, "=== Results ===")
	fmt.Fprintf(w, "Requests:        %d\n", total)
	fmt.Fprintf(w, "2xx:             %d\n", ok)
	fmt.Fprintf(w, "Transport errors: %d\n", s.failures)
	fmt.Fprintf(w, "Zero-hit 2xx:    %d\n", s.zeroHits)
	if total > 0 && elapsed > 0 {
		fmt.Fprintf(w, "Requests/sec:    %.2f\n", float64(total)/elapsed.Seconds())
	}

	if len(s.latencies) > 0 {
		sorted := slices.Clone(s.latencies)
		slices.Sort(sorted)
		fmt.Fprintln(w, "\n=== Latency ===")
		fmt.Fprintf(w, "Min: %s\n", sorted[0])
		fmt.Fprintf(w, "P50: %s\n", percentile(sorted, 50))
		fmt.Fprintf(w, "P90: %s\n", percentile(sorted, 90))
		fmt.Fprintf(w, "P99: %s\n", percentile(sorted, 99))
		fmt.Fprintf(w, "Max: %s\n", sorted[len(sorted)-1])
	}

	codes := make([]int, 0, len(s.codes))
	for code := range s.codes {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	fmt.Fprintln(w, "\n=== Status Codes ===")
	for _, code := range codes {
		fmt.Fprintf(w, "  %d: %d\n", code, s.codes[code])
	}
}

// percentile uses the nearest-rank method on an ascending slice.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	idx = max(0, min(idx, len(sorted)-1))
	return sorted[idx]
}
