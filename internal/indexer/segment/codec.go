package segment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/index"
)

// Delimiter separates a term from its postings on every index line.
const Delimiter = ':'

// ErrMalformedLine is returned by ParseLine for lines that do not follow
// the "term: doc tf doc tf ..." layout.
var ErrMalformedLine = errors.New("malformed postings line")

// AppendLine appends the on-disk form of one term entry, without the
// trailing newline.
func AppendLine(buf []byte, term string, postings []index.Posting) []byte {
	buf = append(buf, term...)
	buf = append(buf, Delimiter)
	for _, p := range postings {
		buf = append(buf, ' ')
		buf = strconv.AppendInt(buf, int64(p.DocID), 10)
		buf = append(buf, ' ')
		buf = strconv.AppendInt(buf, int64(p.Frequency), 10)
	}
	return buf
}

// FormatLine renders one term entry as an index line.
func FormatLine(term string, postings []index.Posting) string {
	return string(AppendLine(nil, term, postings))
}

// SplitTerm cuts line at the first delimiter. It does not look at the
// postings, so callers can discard unwanted lines cheaply.
func SplitTerm(line string) (term, rest string, ok bool) {
	i := strings.IndexByte(line, Delimiter)
	if i < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:i]), line[i+1:], true
}

// ParsePostings decodes the "doc tf doc tf ..." part of a line. An odd
// field count, a non-integer field or a non-positive value rejects the whole
// list.
func ParsePostings(rest string) (index.Postings, error) {
	fields := strings.Fields(rest)
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("%w: odd field count %d", ErrMalformedLine, len(fields))
	}
	postings := make(index.Postings, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		docID, err := strconv.Atoi(fields[i])
		if err != nil || docID < 1 {
			return nil, fmt.Errorf("%w: bad doc id %q", ErrMalformedLine, fields[i])
		}
		tf, err := strconv.Atoi(fields[i+1])
		if err != nil || tf < 1 {
			return nil, fmt.Errorf("%w: bad term frequency %q", ErrMalformedLine, fields[i+1])
		}
		postings[docID] += tf
	}
	return postings, nil
}

// ParseLine decodes a full index line.
func ParseLine(line string) (string, index.Postings, error) {
	term, rest, ok := SplitTerm(strings.TrimRight(line, "\r\n"))
	if !ok {
		return "", nil, fmt.Errorf("%w: missing delimiter", ErrMalformedLine)
	}
	if term == "" {
		return "", nil, fmt.Errorf("%w: empty term", ErrMalformedLine)
	}
	postings, err := ParsePostings(rest)
	if err != nil {
		return "", nil, err
	}
	return term, postings, nil
}
