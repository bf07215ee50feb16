package segment

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/index"
)

const (
	PartialPrefix = "partial_"
	PartialSuffix = ".txt"
)

// PartialName returns the file name of the seq-th partial index. Names are
// zero-padded so that lexical order equals spill order.
func PartialName(seq int) string {
	return fmt.Sprintf("%s%06d%s", PartialPrefix, seq, PartialSuffix)
}

// Writer spills accumulator snapshots into numbered partial index files.
type Writer struct {
	dataDir string
	seq     int
}

// NewWriter creates a Writer that writes partial indexes into dataDir,
// starting at sequence number 1.
func NewWriter(dataDir string) *Writer {
	return &Writer{dataDir: dataDir, seq: 1}
}

// Seq is the sequence number the next Write will use.
func (w *Writer) Seq() int {
	return w.seq
}

// Write persists entries as the next partial index. The sequence number
// only advances after the file is durably in place.
func (w *Writer) Write(entries []index.TermEntry) (string, error) {
	if len(entries) == 0 {
		return "", fmt.Errorf("cannot write empty partial index")
	}
	if err := os.MkdirAll(w.dataDir, 0755); err != nil {
		return "", fmt.Errorf("creating partial index directory: %w", err)
	}
	name := PartialName(w.seq)
	if err := WriteFile(filepath.Join(w.dataDir, name), entries); err != nil {
		return "", err
	}
	w.seq++
	return name, nil
}

// WriteFile atomically writes entries to path in the line-oriented index
// format. It writes to a .tmp file first and renames on success.
func WriteFile(path string, entries []index.TermEntry) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp index file: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriterSize(f, 256*1024)
	line := make([]byte, 0, 4096)
	for _, entry := range entries {
		line = AppendLine(line[:0], entry.Term, entry.Postings)
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("writing postings for term %q: %w", entry.Term, err)
		}
	}
	if err := bw.Flush(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("flushing index file: %w", err)
	}
	if err := f.Sync(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("syncing index file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing index file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming index file: %w", err)
	}
	return nil
}

// ListPartials returns the partial index files in dir, sorted by name. A
// missing directory is reported with an error wrapping os.ErrNotExist.
func ListPartials(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading partial index directory: %w", err)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, PartialPrefix) || !strings.HasSuffix(name, PartialSuffix) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

// RemovePartials deletes every partial index in dir. A missing directory is
// not an error.
func RemovePartials(dir string) (int, error) {
	paths, err := ListPartials(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	for _, p := range paths {
		if err := os.Remove(p); err != nil {
			return 0, fmt.Errorf("removing stale partial index %s: %w", p, err)
		}
	}
	return len(paths), nil
}
