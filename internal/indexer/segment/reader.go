package segment

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/index"
)

// ScanStats summarises one pass over an index file.
type ScanStats struct {
	Lines        int
	Matched      int
	SkippedLines int
}

func (s *ScanStats) add(o ScanStats) {
	s.Lines += o.Lines
	s.Matched += o.Matched
	s.SkippedLines += o.SkippedLines
}

// Reader streams the lines of one index file.
type Reader struct {
	file     *os.File
	filePath string
	br       *bufio.Reader
}

func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening index file: %w", err)
	}
	return &Reader{
		file:     f,
		filePath: path,
		br:       bufio.NewReaderSize(f, 256*1024),
	}, nil
}

// Scan visits every line whose term satisfies want and hands its parsed
// postings to fn. Lines for other terms are skipped without parsing their
// postings. Malformed lines are counted and skipped. A nil want selects every
// term. Scan checks ctx between lines.
func (r *Reader) Scan(ctx context.Context, want func(term string) bool, fn func(term string, postings index.Postings)) (ScanStats, error) {
	var stats ScanStats
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		line, err := r.br.ReadString('\n')
		if len(line) > 0 {
			stats.Lines++
			r.handle(line, want, fn, &stats)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return stats, nil
			}
			return stats, fmt.Errorf("reading %s: %w", r.filePath, err)
		}
	}
}

func (r *Reader) handle(line string, want func(string) bool, fn func(string, index.Postings), stats *ScanStats) {
	term, rest, ok := SplitTerm(line)
	if !ok || term == "" {
		if len(line) > 1 {
			stats.SkippedLines++
		}
		return
	}
	if want != nil && !want(term) {
		return
	}
	postings, err := ParsePostings(rest)
	if err != nil {
		stats.SkippedLines++
		return
	}
	stats.Matched++
	fn(term, postings)
}

func (r *Reader) Close() error {
	return r.file.Close()
}

// ScanFiles runs Scan over each path in order.
func ScanFiles(ctx context.Context, paths []string, want func(term string) bool, fn func(term string, postings index.Postings)) (ScanStats, error) {
	var total ScanStats
	for _, path := range paths {
		r, err := OpenReader(path)
		if err != nil {
			return total, err
		}
		stats, err := r.Scan(ctx, want, fn)
		r.Close()
		total.add(stats)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
