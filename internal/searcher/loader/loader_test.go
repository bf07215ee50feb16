package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/errors"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMissingIndex(t *testing.T) {
	cfg := config.IndexerConfig{DataDir: t.TempDir()}
	l := New(cfg, nil)
	_, err := l.Load(context.Background(), []string{"acm"})
	if !errors.Is(err, apperrors.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
	if l.Available() {
		t.Error("Available should be false without an index")
	}
}

func TestLoadFromCanonical(t *testing.T) {
	cfg := config.IndexerConfig{DataDir: t.TempDir()}
	write(t, cfg.IndexPath(), "acm: 1 2 3 1\nlearn: 2 5\nmachin: 2 1 4 4\n")
	// partials must be ignored once the canonical index exists
	write(t, filepath.Join(cfg.PartialDir(), segment.PartialName(1)), "acm: 9 9\n")

	l := New(cfg, nil)
	source, _, err := l.Resolve()
	if err != nil || source != SourceCanonical {
		t.Fatalf("Resolve = %v, %v", source, err)
	}
	got, err := l.Load(context.Background(), []string{"acm", "missing"})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]index.Postings{
		"acm":     {1: 2, 3: 1},
		"missing": {},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load = %v, want %v", got, want)
	}
}

func TestLoadFallsBackToPartialsAndSums(t *testing.T) {
	cfg := config.IndexerConfig{DataDir: t.TempDir()}
	write(t, filepath.Join(cfg.PartialDir(), segment.PartialName(1)), "acm: 1 2\nzeta: 1 1\n")
	write(t, filepath.Join(cfg.PartialDir(), segment.PartialName(2)), "acm: 1 3 5 1\nbad: x\n")
	write(t, filepath.Join(cfg.PartialDir(), segment.PartialName(3)), "acm: 7 1 odd\n")

	l := New(cfg, nil)
	got, err := l.Load(context.Background(), []string{"acm", "bad"})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]index.Postings{
		"acm": {1: 5, 5: 1},
		"bad": {},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load = %v, want %v", got, want)
	}
}

func TestLoadEmptyPartialDir(t *testing.T) {
	cfg := config.IndexerConfig{DataDir: t.TempDir()}
	if err := os.MkdirAll(cfg.PartialDir(), 0755); err != nil {
		t.Fatal(err)
	}
	got, err := New(cfg, nil).Load(context.Background(), []string{"acm"})
	if err != nil {
		t.Fatalf("empty partial directory should not be an error: %v", err)
	}
	if len(got["acm"]) != 0 {
		t.Errorf("expected no postings, got %v", got)
	}
}

func TestRoundTripThroughWriter(t *testing.T) {
	cfg := config.IndexerConfig{DataDir: t.TempDir()}
	acc := index.NewAccumulator(0)
	acc.AddDocument(1, map[string]int{"alpha": 6, "beta": 1})
	acc.AddDocument(2, map[string]int{"alpha": 2})
	if _, err := segment.NewWriter(cfg.PartialDir()).Write(acc.BeginSpill()); err != nil {
		t.Fatal(err)
	}
	got, err := New(cfg, nil).Load(context.Background(), []string{"alpha", "beta"})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]index.Postings{"alpha": {1: 6, 2: 2}, "beta": {1: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip = %v, want %v", got, want)
	}
}
