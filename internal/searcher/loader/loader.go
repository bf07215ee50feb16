// Package loader reads postings for a small set of terms from the on-disk
// index without materialising the whole index.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/metrics"
)

// Source names the files a load was served from.
type Source string

const (
	SourceCanonical Source = "canonical"
	SourcePartials  Source = "partials"
)

// Loader scans either the canonical index or, when it has not been built
// yet, every partial index. It holds no mutable state and is safe for
// concurrent use.
type Loader struct {
	indexPath  string
	partialDir string
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func New(cfg config.IndexerConfig, m *metrics.Metrics) *Loader {
	return &Loader{
		indexPath:  cfg.IndexPath(),
		partialDir: cfg.PartialDir(),
		metrics:    m,
		logger:     slog.Default().With("component", "postings-loader"),
	}
}

// Resolve picks the files to scan. It fails with ErrIndexNotFound when
// neither the canonical index nor the partial index directory exists.
func (l *Loader) Resolve() (Source, []string, error) {
	if info, err := os.Stat(l.indexPath); err == nil && !info.IsDir() {
		return SourceCanonical, []string{l.indexPath}, nil
	}
	paths, err := segment.ListPartials(l.partialDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil, apperrors.ErrIndexNotFound
		}
		return "", nil, err
	}
	return SourcePartials, paths, nil
}

// Available reports whether an index exists to query.
func (l *Loader) Available() bool {
	_, _, err := l.Resolve()
	return err == nil
}

// Load returns postings for each requested term. Every requested term is a
// key of the result, with an empty mapping when the term is not indexed.
// Postings for the same (term, doc_id) found in several files are summed.
func (l *Loader) Load(ctx context.Context, terms []string) (map[string]index.Postings, error) {
	source, paths, err := l.Resolve()
	if err != nil {
		return nil, err
	}
	result := make(map[string]index.Postings, len(terms))
	for _, term := range terms {
		result[term] = make(index.Postings)
	}
	if len(terms) == 0 {
		return result, nil
	}

	start := time.Now()
	want := func(term string) bool {
		_, ok := result[term]
		return ok
	}
	stats, err := segment.ScanFiles(ctx, paths, want, func(term string, postings index.Postings) {
		result[term].AddAll(postings)
	})
	if err != nil {
		return nil, fmt.Errorf("loading postings from %s: %w", source, err)
	}
	l.metrics.Loaded(string(source), time.Since(start), stats.SkippedLines)
	l.logger.Debug("postings loaded",
		"source", source,
		"files", len(paths),
		"terms", len(terms),
		"matched_lines", stats.Matched,
		"skipped_lines", stats.SkippedLines,
		"elapsed", time.Since(start),
	)
	return result, nil
}
