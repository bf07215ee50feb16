package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/ranker"
)

type memStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
}

func newMemStore() *memStore { return &memStore{data: make(map[string][]byte)} }

func (m *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) DeletePrefix(_ context.Context, prefix string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func plan(q string) *parser.QueryPlan {
	return parser.Parse(q, tokenizer.NewQueryNormalizer(tokenizer.IdentityStemmer{}, true))
}

func sample(q string) *executor.SearchResult {
	return &executor.SearchResult{
		Query:     q,
		Terms:     []string{"cristina", "lopes"},
		TotalHits: 1,
		Results:   []ranker.Result{{DocID: 1, URL: "https://a.example/x", Score: 3.1}},
	}
}

func TestGetOrComputeCachesResult(t *testing.T) {
	c := New(newMemStore(), time.Minute, nil)
	ctx := context.Background()
	calls := 0
	compute := func(context.Context) (*executor.SearchResult, error) {
		calls++
		return sample("cristina lopes"), nil
	}

	_, hit, err := c.GetOrCompute(ctx, plan("cristina lopes"), 5, compute)
	if err != nil || hit {
		t.Fatalf("first call: hit=%v err=%v", hit, err)
	}
	res, hit, err := c.GetOrCompute(ctx, plan("Lopes, Cristina"), 5, compute)
	if err != nil || !hit {
		t.Fatalf("second call: hit=%v err=%v", hit, err)
	}
	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}
	if res.Query != "Lopes, Cristina" {
		t.Errorf("Query = %q, want caller's text", res.Query)
	}
	if len(res.Results) != 1 || res.Results[0].DocID != 1 {
		t.Errorf("unexpected cached results %+v", res.Results)
	}
	if h, m := c.Stats(); h != 1 || m != 1 {
		t.Errorf("stats = %d/%d, want 1/1", h, m)
	}
}

func TestLimitIsPartOfKey(t *testing.T) {
	if buildKey(plan("a b"), 5) == buildKey(plan("a b"), 10) {
		t.Error("different limits share a key")
	}
	if buildKey(plan("a b"), 5) != buildKey(plan("b a"), 5) {
		t.Error("term order changed the key")
	}
}

func TestComputeErrorNotCached(t *testing.T) {
	store := newMemStore()
	c := New(store, time.Minute, nil)
	boom := errors.New("boom")
	_, _, err := c.GetOrCompute(context.Background(), plan("x"), 5, func(context.Context) (*executor.SearchResult, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(store.data) != 0 {
		t.Errorf("error result was cached")
	}
}

func TestBackendErrorIsMiss(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("connection refused")
	c := New(store, time.Minute, nil)
	res, hit, err := c.GetOrCompute(context.Background(), plan("x"), 5, func(context.Context) (*executor.SearchResult, error) {
		return sample("x"), nil
	})
	if err != nil || hit || res == nil {
		t.Errorf("res=%v hit=%v err=%v", res, hit, err)
	}
}

func TestSingleflightCollapsesConcurrentMisses(t *testing.T) {
	c := New(newMemStore(), time.Minute, nil)
	var calls atomic.Int32
	release := make(chan struct{})
	compute := func(context.Context) (*executor.SearchResult, error) {
		calls.Add(1)
		<-release
		return sample("q"), nil
	}
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := c.GetOrCompute(context.Background(), plan("q"), 5, compute); err != nil {
				t.Errorf("GetOrCompute: %v", err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	if n := calls.Load(); n != 1 {
		t.Errorf("compute ran %d times, want 1", n)
	}
}

func TestInvalidate(t *testing.T) {
	store := newMemStore()
	store.data["unrelated"] = []byte("keep")
	c := New(store, time.Minute, nil)
	ctx := context.Background()
	c.Set(ctx, plan("a"), 5, sample("a"))
	c.Set(ctx, plan("b"), 5, sample("b"))
	n, err := c.Invalidate(ctx)
	if err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d, want 2", n)
	}
	if _, ok := store.data["unrelated"]; !ok {
		t.Error("unrelated key was removed")
	}
	if _, hit := c.Get(ctx, plan("a"), 5); hit {
		t.Error("entry survived invalidation")
	}
}
