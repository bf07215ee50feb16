// Package tokenizer provides text tokenisation for the search engine.
// It lower-cases input, splits on non-alphanumeric ASCII boundaries and
// applies a pluggable stemmer. The same Normalizer composition is used by the
// indexer and by the query path.
package tokenizer

import (
	"strings"

	"github.com/kljensen/snowball/english"
)

// queryStopWords is the stop-word list applied to queries only. Documents are
// indexed with every token.
var queryStopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "has": {}, "he": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"that": {}, "the": {}, "to": {}, "was": {}, "were": {}, "will": {},
	"with": {},
}

// Stemmer maps a lower-cased token to its stem. Implementations must be pure.
type Stemmer interface {
	Stem(token string) string
}

// StemFunc adapts an ordinary function to the Stemmer interface.
type StemFunc func(token string) string

func (f StemFunc) Stem(token string) string { return f(token) }

// PorterStemmer stems English tokens with the Snowball (Porter2) algorithm.
type PorterStemmer struct{}

func (PorterStemmer) Stem(token string) string {
	return english.Stem(token, true)
}

// IdentityStemmer returns tokens unchanged.
type IdentityStemmer struct{}

func (IdentityStemmer) Stem(token string) string { return token }

// Tokenize extracts maximal runs of ASCII letters and digits from the
// lower-cased text, in left-to-right order.
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	tokens := make([]string, 0, len(text)/6)
	start := -1
	for i := 0; i < len(text); i++ {
		if isAlnum(text[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, text[start:i])
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, text[start:])
	}
	return tokens
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

// Normalizer turns raw text into terms: tokenize, drop stop-words (if any),
// stem.
type Normalizer struct {
	stemmer   Stemmer
	stopWords map[string]struct{}
}

// NewNormalizer returns the document normalizer. It keeps every token.
func NewNormalizer(stemmer Stemmer) *Normalizer {
	if stemmer == nil {
		stemmer = PorterStemmer{}
	}
	return &Normalizer{stemmer: stemmer}
}

// NewQueryNormalizer returns a normalizer sharing the document pipeline,
// optionally dropping query stop-words before stemming.
func NewQueryNormalizer(stemmer Stemmer, removeStopWords bool) *Normalizer {
	n := NewNormalizer(stemmer)
	if removeStopWords {
		n.stopWords = queryStopWords
	}
	return n
}

// Normalize returns the terms of text in order, duplicates included.
func (n *Normalizer) Normalize(text string) []string {
	return n.NormalizeTokens(Tokenize(text))
}

// NormalizeTokens applies stop-word filtering and stemming to tokens that
// were already produced by Tokenize.
func (n *Normalizer) NormalizeTokens(tokens []string) []string {
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, stop := n.stopWords[tok]; stop {
			continue
		}
		term := n.stemmer.Stem(tok)
		if term == "" {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}
