package segment

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/index"
)

// MergeStats describes the outcome of a merge.
type MergeStats struct {
	Files        int
	Lines        int
	SkippedLines int
	Terms        int
}

// Merge reconciles partial index files into a single term -> postings
// mapping. Files are processed in filename order; term frequencies for a
// (term, doc_id) pair seen in several files are summed, so the result does
// not depend on file order. Malformed lines are skipped.
//
// Everything is accumulated in memory. Partial files are already sorted by
// term, so a streaming k-way merge could bound memory to one line per file
// if the corpus outgrows this.
func Merge(ctx context.Context, paths []string) (map[string]index.Postings, MergeStats, error) {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Slice(sorted, func(i, j int) bool {
		return filepath.Base(sorted[i]) < filepath.Base(sorted[j])
	})

	merged := make(map[string]index.Postings)
	scan, err := ScanFiles(ctx, sorted, nil, func(term string, postings index.Postings) {
		existing, ok := merged[term]
		if !ok {
			merged[term] = postings
			return
		}
		existing.AddAll(postings)
	})
	stats := MergeStats{
		Files:        len(sorted),
		Lines:        scan.Lines,
		SkippedLines: scan.SkippedLines,
		Terms:        len(merged),
	}
	if err != nil {
		return nil, stats, fmt.Errorf("merging partial indexes: %w", err)
	}
	return merged, stats, nil
}

// WriteIndex writes a merged mapping as the canonical index at path.
func WriteIndex(path string, terms map[string]index.Postings) error {
	if err := WriteFile(path, index.Entries(terms)); err != nil {
		return fmt.Errorf("writing canonical index: %w", err)
	}
	return nil
}
