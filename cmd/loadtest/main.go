// Command loadtest replays the configured fixed queries against a running
// searcher (-serve) and reports latency percentiles.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/config"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the search service")
	concurrency := flag.Int("concurrency", 8, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	limit := flag.Int("limit", 5, "results per query")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	queries := cfg.Search.FixedQueries
	if len(queries) == 0 {
		fmt.Fprintln(os.Stderr, "no search.fixedQueries configured")
		os.Exit(1)
	}

	fmt.Printf("Target: %s  concurrency=%d  duration=%s  queries=%d\n\n",
		*baseURL, *concurrency, *duration, len(queries))

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()
	start := time.Now()
	s := run(ctx, *baseURL, queries, *concurrency, *limit)
	s.write(os.Stdout, time.Since(start))

	if s.total() == 0 {
		fmt.Println("\nWARNING: no requests completed. Is the searcher running with -serve?")
		os.Exit(1)
	}
}

func run(ctx context.Context, baseURL string, queries []string, concurrency, limit int) *stats {
	s := newStats()
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConnsPerHost: concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	var g errgroup.Group
	for w := range concurrency {
		g.Go(func() error {
			for i := w; ctx.Err() == nil; i++ {
				q := queries[i%len(queries)]
				target := fmt.Sprintf("%s/api/v1/search?q=%s&limit=%d", baseURL, url.QueryEscape(q), limit)
				d, code, zero := fire(ctx, client, target)
				if ctx.Err() != nil {
					return nil
				}
				s.record(d, code, zero)
			}
			return nil
		})
	}
	_ = g.Wait()
	return s
}

func fire(ctx context.Context, client *http.Client, target string) (time.Duration, int, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, 0, false
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return time.Since(start), 0, false
	}
	defer resp.Body.Close()
	var body struct {
		TotalHits int `json:"total_hits"`
	}
	if resp.StatusCode == http.StatusOK {
		_ = json.NewDecoder(resp.Body).Decode(&body)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return time.Since(start), resp.StatusCode, resp.StatusCode == http.StatusOK && body.TotalHits == 0
}
