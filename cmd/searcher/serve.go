package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/events"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/docmap"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/middleware"
	pkgredis "github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/redis"
)

func (s *searcher) serve(ctx context.Context) error {
	cfg := s.cfg
	checker := health.NewChecker(5 * time.Second)
	checker.Register("index", health.FuncCheck(func(context.Context) error {
		_, _, err := s.loader.Resolve()
		return err
	}))

	var queryCache *cache.QueryCache
	redisClient, err := pkgredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, query caching disabled", "addr", cfg.Redis.Addr, "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis.CacheTTL, s.metrics)
		checker.Register("redis", health.OptionalPingCheck(redisClient))
		slog.Info("query cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete,
			events.IndexCompleteHandler(s.onIndexComplete(queryCache)))
		go func() {
			if err := consumer.Run(ctx); err != nil {
				slog.Error("index event consumer stopped", "error", err)
			}
		}()
	}

	if cfg.Metrics.Enabled {
		shutdown := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(sctx)
		}()
	}

	h := handler.New(s.exec, queryCache, cfg.Search.DefaultLimit, cfg.Search.MaxResults)
	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Metrics(s.metrics)(chain)
	chain = middleware.AccessLog(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(sctx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	slog.Info("search service stopped")
	return nil
}

// onIndexComplete swaps in the new doc map and drops cached results.
func (s *searcher) onIndexComplete(queryCache *cache.QueryCache) func(context.Context, events.IndexComplete) error {
	return func(ctx context.Context, ev events.IndexComplete) error {
		path := ev.DocMapPath
		if path == "" {
			path = s.cfg.Indexer.DocMapPath()
		}
		m, err := docmap.Load(path)
		if err != nil {
			return fmt.Errorf("reloading doc map: %w", err)
		}
		s.docs.Set(m)
		if queryCache != nil {
			if _, err := queryCache.Invalidate(ctx); err != nil {
				return err
			}
		}
		slog.Info("index reloaded", "documents", m.Len(), "unique_terms", ev.UniqueTerms)
		return nil
	}
}
