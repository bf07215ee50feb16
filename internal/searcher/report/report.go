// Package report renders ranked results for terminals and result files.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/regression"
)

const rule = "================================================================================"

// Results prints one line per result, or "No results found.".
func Results(w io.Writer, results []ranker.Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}
	for i, r := range results {
		fmt.Fprintf(w, "%d. %s  (doc_id=%d, score=%s)\n",
			i+1, r.URL, r.DocID, strconv.FormatFloat(r.Score, 'f', -1, 64))
	}
}

// Batch prints each query under a numbered header, in the given order.
func Batch(w io.Writer, queries []string, results map[string]*executor.SearchResult) {
	for i, q := range queries {
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "Query %d: %s\n", i+1, q)
		res := results[q]
		if res == nil {
			Results(w, nil)
			continue
		}
		Results(w, res.Results)
	}
}

// Diffs prints the changes between two recorded runs.
func Diffs(w io.Writer, diffs []regression.QueryDiff) {
	fmt.Fprintln(w, rule)
	changed := 0
	for _, d := range diffs {
		if !d.Changed() {
			continue
		}
		changed++
		fmt.Fprintf(w, "%s: hits %+d", d.Query, d.HitDelta)
		if len(d.Added) > 0 {
			fmt.Fprintf(w, ", added [%s]", strings.Join(d.Added, " "))
		}
		if len(d.Removed) > 0 {
			fmt.Fprintf(w, ", removed [%s]", strings.Join(d.Removed, " "))
		}
		if d.Reranked {
			fmt.Fprint(w, ", reranked")
		}
		fmt.Fprintln(w)
	}
	if changed == 0 {
		fmt.Fprintln(w, "No changes since the previous run.")
	}
}

// WriteJSON saves query -> results as indented JSON.
func WriteJSON(path string, results map[string]*executor.SearchResult) error {
	out := make(map[string][]ranker.Result, len(results))
	for q, res := range results {
		out[q] = res.Results
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing results to %s: %w", path, err)
	}
	return nil
}
