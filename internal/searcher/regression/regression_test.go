package regression

import (
	"reflect"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/ranker"
)

func run(queries map[string][]string) *Run {
	r := &Run{Queries: make(map[string]QueryResult)}
	for q, urls := range queries {
		r.Queries[q] = QueryResult{TotalHits: len(urls), URLs: urls}
	}
	return r
}

func TestNewRun(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := NewRun(map[string]*executor.SearchResult{
		"acm": {TotalHits: 7, Results: []ranker.Result{{DocID: 3, URL: "u3"}, {DocID: 1, URL: "u1"}}},
	}, 10, at)
	if r.Documents != 10 || !r.StartedAt.Equal(at) {
		t.Errorf("run header = %+v", r)
	}
	got := r.Queries["acm"]
	if got.TotalHits != 7 || !reflect.DeepEqual(got.URLs, []string{"u3", "u1"}) {
		t.Errorf("acm = %+v", got)
	}
}

func TestDiff(t *testing.T) {
	prev := run(map[string][]string{
		"same":     {"a", "b"},
		"reranked": {"a", "b"},
		"changed":  {"a", "b", "c"},
	})
	cur := run(map[string][]string{
		"same":     {"a", "b"},
		"reranked": {"b", "a"},
		"changed":  {"a", "d", "c"},
		"new":      {"x"},
	})

	diffs := Diff(prev, cur)
	byQuery := make(map[string]QueryDiff)
	for _, d := range diffs {
		byQuery[d.Query] = d
	}
	if len(diffs) != 4 || diffs[0].Query != "changed" {
		t.Fatalf("diffs not sorted by query: %+v", diffs)
	}
	if byQuery["same"].Changed() {
		t.Errorf("same reported changed: %+v", byQuery["same"])
	}
	if d := byQuery["reranked"]; !d.Reranked || len(d.Added) != 0 {
		t.Errorf("reranked = %+v", d)
	}
	if d := byQuery["changed"]; !reflect.DeepEqual(d.Added, []string{"d"}) || !reflect.DeepEqual(d.Removed, []string{"b"}) {
		t.Errorf("changed = %+v", d)
	}
	if d := byQuery["new"]; !reflect.DeepEqual(d.Added, []string{"x"}) || d.HitDelta != 1 {
		t.Errorf("new = %+v", d)
	}
}

func TestDiffWithoutPrevious(t *testing.T) {
	diffs := Diff(nil, run(map[string][]string{"q": {"a"}}))
	if len(diffs) != 1 || !reflect.DeepEqual(diffs[0].Added, []string{"a"}) {
		t.Errorf("diffs = %+v", diffs)
	}
}
