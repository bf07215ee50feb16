// Package corpus walks a directory of crawled pages. Each page is a JSON file
// holding at least a "url" and a "content" field; pages are numbered from 1
// in lexical path order so that repeated scans assign identical doc ids.
package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Document is one crawled page.
type Document struct {
	DocID   int
	URL     string
	Content string
	Path    string
	// Err is set when the file could not be read or decoded. The document
	// still owns its doc id.
	Err error
}

type page struct {
	URL      string  `json:"url"`
	Content  *string `json:"content"`
	Encoding string  `json:"encoding"`
}

// StripFragment removes a trailing "#..." from rawURL.
func StripFragment(rawURL string) string {
	u, _, _ := strings.Cut(rawURL, "#")
	return u
}

// Walk calls fn for every .json file below root in lexical order, assigning
// consecutive doc ids starting at 1. Unreadable or undecodable files are
// still passed to fn with Err set. An error returned by fn stops the walk.
func Walk(ctx context.Context, root string, fn func(doc Document) error) (int, error) {
	info, err := os.Stat(root)
	if err != nil {
		return 0, fmt.Errorf("opening corpus: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("corpus path %s is not a directory", root)
	}

	nextID := 1
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		doc := Read(path)
		doc.DocID = nextID
		nextID++
		return fn(doc)
	})
	if err != nil {
		return nextID - 1, fmt.Errorf("walking corpus: %w", err)
	}
	return nextID - 1, nil
}

// Read loads a single page file. Failures are reported in Document.Err.
func Read(path string) Document {
	doc := Document{Path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		doc.Err = fmt.Errorf("reading page: %w", err)
		return doc
	}
	var p page
	if err := json.Unmarshal(data, &p); err != nil {
		doc.Err = fmt.Errorf("decoding page: %w", err)
		return doc
	}
	doc.URL = StripFragment(p.URL)
	if p.Content == nil {
		doc.Err = fmt.Errorf("page has no content field")
		return doc
	}
	doc.Content = *p.Content
	return doc
}
