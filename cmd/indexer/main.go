package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/events"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	corpusDir := flag.String("corpus", "", "corpus root (overrides indexer.corpusDir)")
	dataDir := flag.String("data", "", "output directory (overrides indexer.dataDir)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *corpusDir != "" {
		cfg.Indexer.CorpusDir = *corpusDir
	}
	if *dataDir != "" {
		cfg.Indexer.DataDir = *dataDir
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdown := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(sctx)
		}()
	}

	if err := run(ctx, cfg, m); err != nil {
		slog.Error("indexing failed", "error", err)
		fmt.Fprintf(os.Stderr, "indexing failed: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, m *metrics.Metrics) error {
	slog.Info("starting indexer",
		"corpus", cfg.Indexer.CorpusDir,
		"data_dir", cfg.Indexer.DataDir,
		"max_terms", cfg.Indexer.MaxTermsInMemory,
	)
	engine, err := indexer.NewEngine(cfg.Indexer, indexer.WithMetrics(m))
	if err != nil {
		return err
	}
	summary, err := engine.Run(ctx, cfg.Indexer.CorpusDir)
	if err != nil {
		return err
	}

	fmt.Println("Total documents:", summary.Documents)
	fmt.Println("Unique tokens:", summary.UniqueTerms)
	fmt.Printf("Index size (KB): %.2f\n", float64(summary.IndexSizeBytes)/1024)
	fmt.Println("Final index written to", summary.IndexPath)
	fmt.Println("Document ID to URL map written to", summary.DocMapPath)

	if len(cfg.Kafka.Brokers) == 0 {
		return nil
	}
	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete)
	defer producer.Close()
	// the index is already on disk; a lost notification only delays cache
	// invalidation on running searchers.
	if err := events.PublishIndexComplete(ctx, producer, summary.Event()); err != nil {
		slog.Warn("index complete notification not delivered", "error", err)
	} else {
		slog.Info("index complete published", "topic", cfg.Kafka.Topics.IndexComplete)
	}
	return nil
}
