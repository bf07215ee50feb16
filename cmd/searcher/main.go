package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/docmap"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/loader"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/regression"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/report"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/postgres"
)

type options struct {
	query  string
	topK   int
	fixed  bool
	output string
	record bool
	serve  bool
}

// searcher bundles the query-side components shared by every mode.
type searcher struct {
	cfg     *config.Config
	loader  *loader.Loader
	docs    *docmap.Store
	exec    *executor.Executor
	metrics *metrics.Metrics
}

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	var opts options
	flag.StringVar(&opts.query, "query", "", "single query to run")
	flag.IntVar(&opts.topK, "topk", 0, "number of results (default search.defaultLimit)")
	flag.BoolVar(&opts.fixed, "fixed", false, "run the configured fixed query set")
	flag.StringVar(&opts.output, "output", "", "write results as JSON to this path")
	flag.BoolVar(&opts.record, "record", false, "with -fixed, store the run in PostgreSQL and diff it against the previous one")
	flag.BoolVar(&opts.serve, "serve", false, "serve the HTTP search API")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if opts.topK <= 0 {
		opts.topK = cfg.Search.DefaultLimit
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts); err != nil {
		if errors.Is(err, apperrors.ErrIndexNotFound) {
			fmt.Fprintln(os.Stderr, apperrors.ErrIndexNotFound.Error())
		} else {
			fmt.Fprintf(os.Stderr, "search failed: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options) error {
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}
	s, err := newSearcher(ctx, cfg, m)
	if err != nil {
		return err
	}
	switch {
	case opts.serve:
		return s.serve(ctx)
	case opts.fixed:
		return s.runFixed(ctx, opts)
	case opts.query != "":
		return s.runSingle(ctx, opts)
	default:
		return s.interactive(ctx, os.Stdin, os.Stdout, opts.topK)
	}
}

// newSearcher fails fast with ErrIndexNotFound before touching the corpus,
// then loads the doc map, rebuilding it from the corpus if it is missing.
func newSearcher(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*searcher, error) {
	l := loader.New(cfg.Indexer, m)
	if _, _, err := l.Resolve(); err != nil {
		return nil, err
	}
	docMap, err := docmap.LoadOrBuild(ctx, cfg.Indexer.DocMapPath(), cfg.Indexer.CorpusDir)
	if err != nil {
		return nil, err
	}
	docs := docmap.NewStore(docMap)
	normalizer := tokenizer.NewQueryNormalizer(tokenizer.PorterStemmer{}, cfg.Search.RemoveStopWords)
	exec := executor.New(l, docs, normalizer, executor.Config{
		QueryTimeout:         cfg.Search.QueryTimeout,
		MaxConcurrentQueries: cfg.Search.MaxConcurrentQueries,
	}, m)
	slog.Info("searcher ready", "documents", docs.Len(), "remove_stop_words", cfg.Search.RemoveStopWords)
	return &searcher{cfg: cfg, loader: l, docs: docs, exec: exec, metrics: m}, nil
}

func (s *searcher) runSingle(ctx context.Context, opts options) error {
	res, err := s.exec.Search(ctx, opts.query, opts.topK)
	if err != nil {
		return err
	}
	report.Results(os.Stdout, res.Results)
	return s.save(opts.output, map[string]*executor.SearchResult{opts.query: res})
}

func (s *searcher) runFixed(ctx context.Context, opts options) error {
	queries := s.cfg.Search.FixedQueries
	results, err := s.exec.SearchBatch(ctx, queries, opts.topK)
	if err != nil {
		return err
	}
	report.Batch(os.Stdout, queries, results)
	if err := s.save(opts.output, results); err != nil {
		return err
	}
	if !opts.record {
		return nil
	}
	pg, err := postgres.New(ctx, s.cfg.Postgres)
	if err != nil {
		return err
	}
	defer pg.Close()
	store := regression.NewStore(pg)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	diffs, err := store.Record(ctx, regression.NewRun(results, s.docs.Len(), time.Now()))
	if err != nil {
		return err
	}
	report.Diffs(os.Stdout, diffs)
	return nil
}

func (s *searcher) save(path string, results map[string]*executor.SearchResult) error {
	if path == "" {
		return nil
	}
	if err := report.WriteJSON(path, results); err != nil {
		return err
	}
	fmt.Println("Saved results to", path)
	return nil
}

// interactive reads one query per line until EOF, "exit" or "quit".
func (s *searcher) interactive(ctx context.Context, in io.Reader, out io.Writer, topK int) error {
	fmt.Fprintln(out, "Search interface started. Type a query (AND semantics). Type 'exit' to quit.")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nsearch> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		query := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(query) {
		case "exit", "quit":
			fmt.Fprintln(out, "Bye.")
			return nil
		case "":
			continue
		}
		res, err := s.exec.Search(ctx, query, topK)
		if err != nil {
			if errors.Is(err, apperrors.ErrIndexNotFound) || ctx.Err() != nil {
				return err
			}
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		report.Results(out, res.Results)
	}
}
