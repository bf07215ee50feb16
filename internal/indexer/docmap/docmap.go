// Package docmap persists the doc_id -> URL mapping that turns postings back
// into result URLs.
package docmap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/corpus"
)

// Map is a read-only doc_id -> URL lookup once loaded.
type Map map[int]string

// URL returns the URL for docID, or "" if unknown.
func (m Map) URL(docID int) string {
	return m[docID]
}

// Len is the number of indexed documents.
func (m Map) Len() int {
	return len(m)
}

// Load reads a doc map written by Save.
func Load(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading doc map: %w", err)
	}
	m := make(Map)
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing doc map %s: %w", path, err)
	}
	return m, nil
}

// Save writes m as a JSON object keyed by decimal doc id. The file is
// replaced atomically.
func Save(path string, m Map) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating doc map directory: %w", err)
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling doc map: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("writing doc map: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming doc map: %w", err)
	}
	return nil
}

// Build rescans the corpus and maps every page to its URL, using the same
// doc id assignment as the indexer.
func Build(ctx context.Context, corpusDir string) (Map, error) {
	m := make(Map)
	_, err := corpus.Walk(ctx, corpusDir, func(doc corpus.Document) error {
		m[doc.DocID] = doc.URL
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// LoadOrBuild loads the doc map at path. If the file does not exist it is
// rebuilt from corpusDir and saved for next time.
func LoadOrBuild(ctx context.Context, path, corpusDir string) (Map, error) {
	m, err := Load(path)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	logger := slog.Default().With("component", "docmap")
	logger.Info("doc map missing, rebuilding from corpus", "corpus", corpusDir)
	m, err = Build(ctx, corpusDir)
	if err != nil {
		return nil, fmt.Errorf("building doc map: %w", err)
	}
	if err := Save(path, m); err != nil {
		return nil, err
	}
	logger.Info("doc map saved", "path", path, "documents", len(m))
	return m, nil
}
