// Package regression records fixed-query runs and reports how their ranked
// URLs changed between index builds.
package regression

import (
	"slices"
	"time"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/executor"
)

// Run is one evaluation of the fixed query set.
type Run struct {
	ID        int64                  `json:"id"`
	StartedAt time.Time              `json:"started_at"`
	Documents int                    `json:"documents"`
	Queries   map[string]QueryResult `json:"queries"`
}

// QueryResult is the ranked URL list for one query.
type QueryResult struct {
	TotalHits int      `json:"total_hits"`
	URLs      []string `json:"urls"`
}

// NewRun captures results into a Run.
func NewRun(results map[string]*executor.SearchResult, documents int, at time.Time) *Run {
	run := &Run{
		StartedAt: at.UTC(),
		Documents: documents,
		Queries:   make(map[string]QueryResult, len(results)),
	}
	for query, res := range results {
		urls := make([]string, 0, len(res.Results))
		for _, r := range res.Results {
			urls = append(urls, r.URL)
		}
		run.Queries[query] = QueryResult{TotalHits: res.TotalHits, URLs: urls}
	}
	return run
}

// QueryDiff describes how one query's results moved between two runs.
type QueryDiff struct {
	Query    string   `json:"query"`
	Added    []string `json:"added,omitempty"`
	Removed  []string `json:"removed,omitempty"`
	Reranked bool     `json:"reranked"`
	HitDelta int      `json:"hit_delta"`
}

func (d QueryDiff) Changed() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || d.Reranked || d.HitDelta != 0
}

// Diff compares cur against prev, one entry per query in cur, sorted by
// query. A nil prev treats every URL as added.
func Diff(prev, cur *Run) []QueryDiff {
	queries := make([]string, 0, len(cur.Queries))
	for q := range cur.Queries {
		queries = append(queries, q)
	}
	slices.Sort(queries)

	diffs := make([]QueryDiff, 0, len(queries))
	for _, q := range queries {
		now := cur.Queries[q]
		var before QueryResult
		if prev != nil {
			before = prev.Queries[q]
		}
		d := QueryDiff{
			Query:    q,
			Added:    missingFrom(now.URLs, before.URLs),
			Removed:  missingFrom(before.URLs, now.URLs),
			HitDelta: now.TotalHits - before.TotalHits,
		}
		if len(d.Added) == 0 && len(d.Removed) == 0 {
			d.Reranked = !slices.Equal(now.URLs, before.URLs)
		}
		diffs = append(diffs, d)
	}
	return diffs
}

// missingFrom returns the entries of a that are not in b, in a's order.
func missingFrom(a, b []string) []string {
	var out []string
	for _, u := range a {
		if !slices.Contains(b, u) {
			out = append(out, u)
		}
	}
	return out
}
