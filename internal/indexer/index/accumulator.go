package index

import "fmt"

// State is the lifecycle position of an Accumulator.
type State int

const (
	Accumulating State = iota
	Spilling
)

func (s State) String() string {
	switch s {
	case Accumulating:
		return "accumulating"
	case Spilling:
		return "spilling"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Accumulator is the in-memory inverted index of one indexing session. It is
// bounded by a maximum number of distinct terms; once Full reports true the
// owner spills a snapshot to disk and resets it. It is not safe for
// concurrent use.
type Accumulator struct {
	index    map[string]Postings
	maxTerms int
	docCount int
	state    State
}

func NewAccumulator(maxTerms int) *Accumulator {
	return &Accumulator{
		index:    make(map[string]Postings),
		maxTerms: maxTerms,
	}
}

// AddDocument records a document's weighted term frequencies.
func (a *Accumulator) AddDocument(docID int, tf map[string]int) {
	for term, freq := range tf {
		if freq <= 0 {
			continue
		}
		postings, ok := a.index[term]
		if !ok {
			postings = make(Postings)
			a.index[term] = postings
		}
		postings[docID] = freq
	}
	a.docCount++
}

// Len is the number of distinct terms held.
func (a *Accumulator) Len() int {
	return len(a.index)
}

func (a *Accumulator) DocCount() int {
	return a.docCount
}

// Full reports whether the distinct-term threshold has been reached.
func (a *Accumulator) Full() bool {
	return a.maxTerms > 0 && len(a.index) >= a.maxTerms
}

func (a *Accumulator) State() State {
	return a.state
}

// BeginSpill moves the accumulator into the Spilling state and returns the
// sorted snapshot to write.
func (a *Accumulator) BeginSpill() []TermEntry {
	a.state = Spilling
	return Entries(a.index)
}

// AbortSpill returns to Accumulating without discarding data.
func (a *Accumulator) AbortSpill() {
	a.state = Accumulating
}

// CompleteSpill clears the accumulator after its snapshot was persisted.
func (a *Accumulator) CompleteSpill() {
	a.Reset()
}

func (a *Accumulator) Reset() {
	a.index = make(map[string]Postings)
	a.docCount = 0
	a.state = Accumulating
}
