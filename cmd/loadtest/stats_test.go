package main

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestPercentile(t *testing.T) {
	sorted := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	tests := []struct {
		p    float64
		want time.Duration
	}{
		{0, 1},
		{50, 5},
		{90, 9},
		{99, 10},
		{100, 10},
	}
	for _, tt := range tests {
		if got := percentile(sorted, tt.p); got != tt.want {
			t.Errorf("percentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
	if percentile(nil, 50) != 0 {
		t.Error("empty slice should give 0")
	}
}

func TestStatsWrite(t *testing.T) {
	s := newStats()
	s.record(3*time.Millisecond, 200, false)
	s.record(1*time.Millisecond, 200, true)
	s.record(2*time.Millisecond, 503, false)
	s.record(0, 0, false)

	if s.total() != 4 {
		t.Fatalf("total = %d, want 4", s.total())
	}
	var buf bytes.Buffer
	s.write(&buf, time.Second)
	out := buf.String()
	for _, want := range []string{"Requests:        4", "2xx:             2", "Zero-hit 2xx:    1", "Min: 1ms", "Max: 3ms", "503: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}
