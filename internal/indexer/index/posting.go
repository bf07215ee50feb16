package index

import "sort"

// BoostFactor is the weight added for every occurrence of a term in a
// document's important text.
const BoostFactor = 5

// Posting is one (doc_id, frequency) pair of a term's postings list.
type Posting struct {
	DocID     int
	Frequency int
}

// Postings maps doc_id to term frequency for a single term.
type Postings map[int]int

// Sorted returns the postings ordered by ascending doc_id.
func (p Postings) Sorted() []Posting {
	out := make([]Posting, 0, len(p))
	for docID, tf := range p {
		out = append(out, Posting{DocID: docID, Frequency: tf})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DocID < out[j].DocID
	})
	return out
}

// AddAll sums other into p.
func (p Postings) AddAll(other Postings) {
	for docID, tf := range other {
		p[docID] += tf
	}
}

// TermEntry is a term with its postings in ascending doc_id order.
type TermEntry struct {
	Term     string
	Postings []Posting
}

// Entries flattens a term -> postings mapping into lexicographically sorted
// TermEntry values ready to be written to disk.
func Entries(terms map[string]Postings) []TermEntry {
	entries := make([]TermEntry, 0, len(terms))
	for term, postings := range terms {
		entries = append(entries, TermEntry{
			Term:     term,
			Postings: postings.Sorted(),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}

// Weight computes a document's weighted term frequencies: each body
// occurrence adds 1 and each important occurrence adds boost.
func Weight(tokens, important []string, boost int) map[string]int {
	tf := make(map[string]int, len(tokens))
	for _, term := range tokens {
		tf[term]++
	}
	for _, term := range important {
		tf[term] += boost
	}
	return tf
}
