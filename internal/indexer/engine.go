package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/events"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/corpus"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/docmap"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/extract"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/metrics"
)

// Summary describes a finished indexing run.
type Summary struct {
	Documents          int
	MalformedDocuments int
	UniqueTerms        int
	Partials           int
	SkippedLines       int
	IndexPath          string
	DocMapPath         string
	IndexSizeBytes     int64
	Duration           time.Duration
}

// Event converts the summary into the message announced to searchers.
func (s *Summary) Event() events.IndexComplete {
	return events.IndexComplete{
		Type:        events.EventIndexComplete,
		IndexPath:   s.IndexPath,
		DocMapPath:  s.DocMapPath,
		Documents:   s.Documents,
		UniqueTerms: s.UniqueTerms,
		Partials:    s.Partials,
		SizeBytes:   s.IndexSizeBytes,
		CompletedAt: time.Now().UTC(),
	}
}

type Option func(*Engine)

// WithStemmer replaces the default Porter stemmer.
func WithStemmer(s tokenizer.Stemmer) Option {
	return func(e *Engine) { e.normalizer = tokenizer.NewNormalizer(s) }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// Engine is a single indexing session. It owns the bounded accumulator and
// the partial index writer and is not safe for concurrent use.
type Engine struct {
	acc        *index.Accumulator
	writer     *segment.Writer
	normalizer *tokenizer.Normalizer
	cfg        config.IndexerConfig
	metrics    *metrics.Metrics
	logger     *slog.Logger
	docMap     docmap.Map
	documents  int
	malformed  int
	spills     int
	started    time.Time
}

// NewEngine prepares a fresh indexing session. Partial indexes left behind
// by an earlier run are removed because the index is always rebuilt from
// scratch.
func NewEngine(cfg config.IndexerConfig, opts ...Option) (*Engine, error) {
	if cfg.MaxTermsInMemory < 1 {
		return nil, fmt.Errorf("max terms in memory must be positive, got %d", cfg.MaxTermsInMemory)
	}
	if err := os.MkdirAll(cfg.PartialDir(), 0755); err != nil {
		return nil, fmt.Errorf("creating partial index directory: %w", err)
	}
	e := &Engine{
		acc:        index.NewAccumulator(cfg.MaxTermsInMemory),
		writer:     segment.NewWriter(cfg.PartialDir()),
		normalizer: tokenizer.NewNormalizer(tokenizer.PorterStemmer{}),
		cfg:        cfg,
		logger:     slog.Default().With("component", "indexer"),
		docMap:     make(docmap.Map),
		started:    time.Now(),
	}
	for _, opt := range opts {
		opt(e)
	}
	removed, err := segment.RemovePartials(cfg.PartialDir())
	if err != nil {
		return nil, fmt.Errorf("clearing stale partial indexes: %w", err)
	}
	if removed > 0 {
		e.logger.Info("removed stale partial indexes", "count", removed)
	}
	return e, nil
}

// Run indexes every document under corpusDir, spilling partial indexes as
// the accumulator fills, then merges them into the canonical index and writes
// the doc map.
func (e *Engine) Run(ctx context.Context, corpusDir string) (*Summary, error) {
	e.logger.Info("starting document processing", "corpus", corpusDir, "max_terms", e.cfg.MaxTermsInMemory)
	_, err := corpus.Walk(ctx, corpusDir, func(doc corpus.Document) error {
		return e.IndexDocument(doc)
	})
	if err != nil {
		return nil, err
	}
	return e.Finish(ctx)
}

// IndexDocument adds one document to the accumulator and spills when the
// distinct-term threshold is reached. A document that failed to load still
// receives its doc map entry but contributes no postings.
func (e *Engine) IndexDocument(doc corpus.Document) error {
	e.docMap[doc.DocID] = doc.URL
	e.documents++
	if doc.Err != nil {
		e.malformed++
		e.metrics.DocIndexed(true)
		e.logger.Warn("malformed document, indexing it as empty",
			"doc_id", doc.DocID,
			"path", doc.Path,
			"error", doc.Err,
		)
		return nil
	}

	text := extract.Extract(doc.Content)
	tokens := e.normalizer.Normalize(text.Full)
	important := e.normalizer.Normalize(text.Important)
	tf := index.Weight(tokens, important, e.boost())
	e.acc.AddDocument(doc.DocID, tf)
	e.metrics.DocIndexed(false)
	e.metrics.AccumulatorSize(e.acc.Len())

	e.logger.Debug("document indexed in memory",
		"doc_id", doc.DocID,
		"token_count", len(tokens),
		"important_count", len(important),
		"terms", e.acc.Len(),
	)
	if e.acc.Full() {
		e.logger.Info("accumulator reached max terms, writing partial index",
			"terms", e.acc.Len(),
			"threshold", e.cfg.MaxTermsInMemory,
		)
		if err := e.Flush(); err != nil {
			return fmt.Errorf("flushing accumulator: %w", err)
		}
	}
	return nil
}

func (e *Engine) boost() int {
	if e.cfg.BoostFactor > 0 {
		return e.cfg.BoostFactor
	}
	return index.BoostFactor
}

// Flush spills the accumulator to the next partial index. The accumulator is
// only cleared once the write succeeded.
func (e *Engine) Flush() error {
	if e.acc.Len() == 0 {
		return nil
	}
	entries := e.acc.BeginSpill()
	name, err := e.writer.Write(entries)
	if err != nil {
		e.acc.AbortSpill()
		e.metrics.Spill("error")
		return fmt.Errorf("writing partial index: %w", err)
	}
	e.acc.CompleteSpill()
	e.spills++
	e.metrics.Spill("ok")
	e.metrics.AccumulatorSize(0)
	e.logger.Info("partial index written",
		"partial", name,
		"terms", len(entries),
		"partials", e.spills,
	)
	return nil
}

// Finish writes the residual accumulator, merges all partial indexes into
// the canonical index and saves the doc map.
func (e *Engine) Finish(ctx context.Context) (*Summary, error) {
	if err := e.Flush(); err != nil {
		return nil, fmt.Errorf("writing final partial index: %w", err)
	}
	paths, err := segment.ListPartials(e.cfg.PartialDir())
	if err != nil {
		return nil, err
	}

	e.logger.Info("merging partial indexes", "partials", len(paths))
	mergeStart := time.Now()
	merged, stats, err := segment.Merge(ctx, paths)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(e.cfg.FinalDir(), 0755); err != nil {
		return nil, fmt.Errorf("creating final index directory: %w", err)
	}
	if err := segment.WriteIndex(e.cfg.IndexPath(), merged); err != nil {
		return nil, err
	}
	e.metrics.Merged(time.Since(mergeStart), stats.SkippedLines)
	e.logger.Info("final index written",
		"path", e.cfg.IndexPath(),
		"terms", stats.Terms,
		"lines", stats.Lines,
		"skipped_lines", stats.SkippedLines,
	)

	if err := docmap.Save(e.cfg.DocMapPath(), e.docMap); err != nil {
		return nil, err
	}

	info, err := os.Stat(e.cfg.IndexPath())
	if err != nil {
		return nil, fmt.Errorf("stat canonical index: %w", err)
	}
	summary := &Summary{
		Documents:          e.documents,
		MalformedDocuments: e.malformed,
		UniqueTerms:        stats.Terms,
		Partials:           len(paths),
		SkippedLines:       stats.SkippedLines,
		IndexPath:          e.cfg.IndexPath(),
		DocMapPath:         e.cfg.DocMapPath(),
		IndexSizeBytes:     info.Size(),
		Duration:           time.Since(e.started),
	}
	e.logger.Info("indexing complete",
		"documents", summary.Documents,
		"malformed", summary.MalformedDocuments,
		"unique_terms", summary.UniqueTerms,
		"partials", summary.Partials,
		"index_size_kb", fmt.Sprintf("%.2f", float64(summary.IndexSizeBytes)/1024),
	)
	return summary, nil
}

// DocCount is the number of documents seen so far, malformed ones included.
func (e *Engine) DocCount() int {
	return e.documents
}

// Spills is the number of partial indexes written so far.
func (e *Engine) Spills() int {
	return e.spills
}
