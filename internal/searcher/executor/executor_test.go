package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/errors"
)

type fakeLoader struct {
	postings map[string]index.Postings
	err      error
	delay    time.Duration
}

func (f *fakeLoader) Load(ctx context.Context, terms []string) (map[string]index.Postings, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]index.Postings, len(terms))
	for _, term := range terms {
		p := f.postings[term]
		if p == nil {
			p = index.Postings{}
		}
		out[term] = p
	}
	return out, nil
}

type fakeDocs map[int]string

func (d fakeDocs) URL(docID int) string { return d[docID] }
func (d fakeDocs) Len() int             { return len(d) }

func newTestExecutor(loader PostingsLoader, docs DocLookup) *Executor {
	return New(loader, docs, tokenizer.NewQueryNormalizer(tokenizer.IdentityStemmer{}, true),
		Config{QueryTimeout: time.Second, MaxConcurrentQueries: 2}, nil)
}

func scenario() (*fakeLoader, fakeDocs) {
	loader := &fakeLoader{postings: map[string]index.Postings{
		"lopes":    {1: 6},
		"cristina": {1: 6, 2: 1},
		"learning": {2: 2, 3: 1},
	}}
	docs := fakeDocs{1: "https://a.example/x", 2: "https://a.example/y", 3: "https://a.example/y"}
	return loader, docs
}

func TestSearchANDGate(t *testing.T) {
	loader, docs := scenario()
	ex := newTestExecutor(loader, docs)

	res, err := ex.Search(context.Background(), "Cristina Lopes", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Results) != 1 || res.Results[0].DocID != 1 {
		t.Fatalf("results = %+v, want only doc 1", res.Results)
	}
	if res.Results[0].URL != "https://a.example/x" {
		t.Errorf("url = %q", res.Results[0].URL)
	}
	if res.TotalHits != 1 {
		t.Errorf("TotalHits = %d, want 1", res.TotalHits)
	}
	if res.TermStats["cristina"] != 2 || res.TermStats["lopes"] != 1 {
		t.Errorf("TermStats = %v", res.TermStats)
	}
}

func TestSearchAbsentTermYieldsNothing(t *testing.T) {
	loader, docs := scenario()
	ex := newTestExecutor(loader, docs)
	res, err := ex.Search(context.Background(), "cristina zzzz", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Results) != 0 || res.TotalHits != 0 {
		t.Errorf("expected no results, got %+v", res)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	loader, docs := scenario()
	loader.err = errors.New("loader must not be called")
	ex := newTestExecutor(loader, docs)
	for _, q := range []string{"", "   ", "the of and", "!!!"} {
		res, err := ex.Search(context.Background(), q, 5)
		if err != nil {
			t.Fatalf("Search(%q): %v", q, err)
		}
		if len(res.Results) != 0 {
			t.Errorf("Search(%q) returned %d results", q, len(res.Results))
		}
	}
}

func TestSearchDedupesByURL(t *testing.T) {
	loader, docs := scenario()
	ex := newTestExecutor(loader, docs)
	res, err := ex.Search(context.Background(), "learning", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.TotalHits != 2 {
		t.Errorf("TotalHits = %d, want 2", res.TotalHits)
	}
	if len(res.Results) != 1 || res.Results[0].DocID != 2 {
		t.Errorf("expected doc 2 only after dedupe, got %+v", res.Results)
	}
}

func TestSearchTopK(t *testing.T) {
	loader := &fakeLoader{postings: map[string]index.Postings{
		"x": {1: 1, 2: 3, 3: 2, 4: 3},
	}}
	docs := fakeDocs{1: "u1", 2: "u2", 3: "u3", 4: "u4", 5: "u5"}
	ex := newTestExecutor(loader, docs)
	res, err := ex.Search(context.Background(), "x", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Results) != 2 {
		t.Fatalf("len = %d, want 2", len(res.Results))
	}
	if res.Results[0].DocID != 2 || res.Results[1].DocID != 4 {
		t.Errorf("order = %d,%d, want 2,4", res.Results[0].DocID, res.Results[1].DocID)
	}
}

func TestSearchIndexNotFound(t *testing.T) {
	_, docs := scenario()
	ex := newTestExecutor(&fakeLoader{err: apperrors.ErrIndexNotFound}, docs)
	_, err := ex.Search(context.Background(), "lopes", 5)
	if !errors.Is(err, apperrors.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestSearchTimeout(t *testing.T) {
	_, docs := scenario()
	loader := &fakeLoader{delay: 200 * time.Millisecond}
	ex := New(loader, docs, tokenizer.NewQueryNormalizer(tokenizer.IdentityStemmer{}, true),
		Config{QueryTimeout: 10 * time.Millisecond}, nil)
	_, err := ex.Search(context.Background(), "lopes", 5)
	if !errors.Is(err, apperrors.ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestSearchBatch(t *testing.T) {
	loader, docs := scenario()
	ex := newTestExecutor(loader, docs)
	queries := []string{"cristina lopes", "learning", "nothing here"}
	results, err := ex.SearchBatch(context.Background(), queries, 5)
	if err != nil {
		t.Fatalf("SearchBatch: %v", err)
	}
	if len(results) != len(queries) {
		t.Fatalf("got %d results, want %d", len(results), len(queries))
	}
	if n := len(results["cristina lopes"].Results); n != 1 {
		t.Errorf("cristina lopes: %d results", n)
	}
	if n := len(results["nothing here"].Results); n != 0 {
		t.Errorf("nothing here: %d results", n)
	}
}

func TestIntersectPostings(t *testing.T) {
	got := intersectPostings(map[string]index.Postings{
		"a": {1: 1, 2: 1, 3: 1},
		"b": {2: 1, 3: 1, 4: 1},
		"c": {3: 1, 2: 5},
	})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for _, id := range []int{2, 3} {
		if _, ok := got[id]; !ok {
			t.Errorf("missing doc %d", id)
		}
	}
	if len(intersectPostings(nil)) != 0 {
		t.Error("empty input should yield no candidates")
	}
}
