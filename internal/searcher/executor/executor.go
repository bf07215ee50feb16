package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/resilience"
)

type SearchResult struct {
	Query     string          `json:"query"`
	Terms     []string        `json:"terms"`
	TotalHits int             `json:"total_hits"`
	Results   []ranker.Result `json:"results"`
	TermStats map[string]int  `json:"term_stats,omitempty"`
}

// PostingsLoader returns postings for the requested terms. Every requested
// term must be present in the result.
type PostingsLoader interface {
	Load(ctx context.Context, terms []string) (map[string]index.Postings, error)
}

// DocLookup resolves doc ids to URLs and reports the indexed document count.
type DocLookup interface {
	URL(docID int) string
	Len() int
}

type Config struct {
	QueryTimeout         time.Duration
	MaxConcurrentQueries int
}

// Executor evaluates boolean-AND queries. It keeps no per-query state and
// is safe for concurrent use.
type Executor struct {
	loader     PostingsLoader
	docs       DocLookup
	normalizer *tokenizer.Normalizer
	cfg        Config
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func New(loader PostingsLoader, docs DocLookup, normalizer *tokenizer.Normalizer, cfg Config, m *metrics.Metrics) *Executor {
	if cfg.MaxConcurrentQueries < 1 {
		cfg.MaxConcurrentQueries = 1
	}
	return &Executor{
		loader:     loader,
		docs:       docs,
		normalizer: normalizer,
		cfg:        cfg,
		metrics:    m,
		logger:     slog.Default().With("component", "query-executor"),
	}
}

// Plan normalises query with the executor's query normalizer.
func (e *Executor) Plan(query string) *parser.QueryPlan {
	return parser.Parse(query, e.normalizer)
}

// Search parses and executes a single query.
func (e *Executor) Search(ctx context.Context, query string, limit int) (*SearchResult, error) {
	return e.Execute(ctx, e.Plan(query), limit)
}

// Execute runs plan and returns at most limit results, ranked by tf-idf and
// de-duplicated by URL. A query matching nothing is not an error.
func (e *Executor) Execute(ctx context.Context, plan *parser.QueryPlan, limit int) (*SearchResult, error) {
	result := &SearchResult{
		Query:   plan.RawQuery,
		Terms:   plan.Terms,
		Results: []ranker.Result{},
	}
	if len(plan.Terms) == 0 {
		e.metrics.Query("zero_result", 0)
		return result, nil
	}

	err := resilience.WithTimeout(ctx, e.cfg.QueryTimeout, "query", func(ctx context.Context) error {
		return e.evaluate(ctx, plan, limit, result)
	})
	if err != nil {
		e.metrics.Query("error", 0)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrTimeout, err)
		}
		return nil, err
	}

	resultType := "hit"
	if len(result.Results) == 0 {
		resultType = "zero_result"
	}
	e.metrics.Query(resultType, len(result.Results))
	e.logger.Info("query executed",
		"query", plan.RawQuery,
		"terms", plan.Terms,
		"candidates", result.TotalHits,
		"results", len(result.Results),
	)
	return result, nil
}

func (e *Executor) evaluate(ctx context.Context, plan *parser.QueryPlan, limit int, result *SearchResult) error {
	postingsPerTerm, err := e.loader.Load(ctx, plan.Terms)
	if err != nil {
		return fmt.Errorf("loading postings: %w", err)
	}
	termStats := make(map[string]int, len(plan.Terms))
	for _, term := range plan.Terms {
		termStats[term] = len(postingsPerTerm[term])
	}
	result.TermStats = termStats

	for _, term := range plan.Terms {
		if len(postingsPerTerm[term]) == 0 {
			return nil
		}
	}
	queryPostings := make(map[string]index.Postings, len(plan.Terms))
	for _, term := range plan.Terms {
		queryPostings[term] = postingsPerTerm[term]
	}
	candidates := intersectPostings(queryPostings)
	result.TotalHits = len(candidates)
	if len(candidates) == 0 {
		return nil
	}

	ranked := ranker.Rank(plan.Terms, queryPostings, candidates, e.docs.Len())
	result.Results = ranker.Resolve(ranked, e.docs.URL, limit)
	return nil
}

// SearchBatch runs a fixed set of queries concurrently and returns the
// results keyed by query text. The first failing query cancels the rest.
func (e *Executor) SearchBatch(ctx context.Context, queries []string, limit int) (map[string]*SearchResult, error) {
	results := make(map[string]*SearchResult, len(queries))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.MaxConcurrentQueries)
	for _, query := range queries {
		g.Go(func() error {
			res, err := e.Search(gctx, query, limit)
			if err != nil {
				return fmt.Errorf("query %q: %w", query, err)
			}
			mu.Lock()
			results[query] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// intersectPostings returns the doc ids present in every term's postings,
// starting from the shortest list.
func intersectPostings(postingsPerTerm map[string]index.Postings) map[int]struct{} {
	if len(postingsPerTerm) == 0 {
		return make(map[int]struct{})
	}
	var shortestTerm string
	shortestLen := int(^uint(0) >> 1)
	for term, postings := range postingsPerTerm {
		if len(postings) < shortestLen {
			shortestLen = len(postings)
			shortestTerm = term
		}
	}
	candidates := make(map[int]struct{}, shortestLen)
	for docID := range postingsPerTerm[shortestTerm] {
		candidates[docID] = struct{}{}
	}
	for term, postings := range postingsPerTerm {
		if term == shortestTerm {
			continue
		}
		for docID := range candidates {
			if _, exists := postings[docID]; !exists {
				delete(candidates, docID)
			}
		}
	}
	return candidates
}
