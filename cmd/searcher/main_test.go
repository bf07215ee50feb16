package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/docmap"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/executor"
)

type mapLoader map[string]index.Postings

func (m mapLoader) Load(_ context.Context, terms []string) (map[string]index.Postings, error) {
	out := make(map[string]index.Postings, len(terms))
	for _, t := range terms {
		out[t] = m[t]
	}
	return out, nil
}

func TestInteractive(t *testing.T) {
	docs := docmap.NewStore(docmap.Map{1: "https://ics.uci.edu/~lopes", 2: "https://ics.uci.edu/other"})
	s := &searcher{
		docs: docs,
		exec: executor.New(mapLoader{"lopes": {1: 3}}, docs,
			tokenizer.NewQueryNormalizer(tokenizer.IdentityStemmer{}, true), executor.Config{}, nil),
	}
	in := strings.NewReader("lopes\n\nnobody\nexit\nlopes\n")
	var out bytes.Buffer
	if err := s.interactive(context.Background(), in, &out, 5); err != nil {
		t.Fatalf("interactive: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "1. https://ics.uci.edu/~lopes  (doc_id=1") {
		t.Errorf("missing result line:\n%s", got)
	}
	if !strings.Contains(got, "No results found.") {
		t.Errorf("missing empty marker:\n%s", got)
	}
	if !strings.HasSuffix(got, "Bye.\n") {
		t.Errorf("session did not stop at exit:\n%s", got)
	}
}

func TestInteractiveEOF(t *testing.T) {
	docs := docmap.NewStore(docmap.Map{})
	s := &searcher{docs: docs, exec: executor.New(mapLoader{}, docs,
		tokenizer.NewQueryNormalizer(tokenizer.IdentityStemmer{}, true), executor.Config{}, nil)}
	var out bytes.Buffer
	if err := s.interactive(context.Background(), strings.NewReader(""), &out, 5); err != nil {
		t.Fatalf("interactive: %v", err)
	}
}
