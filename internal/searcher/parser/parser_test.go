package parser

import (
	"reflect"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/tokenizer"
)

func TestParse(t *testing.T) {
	n := tokenizer.NewQueryNormalizer(tokenizer.PorterStemmer{}, true)
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty", "", []string{}},
		{"whitespace", "   ", []string{}},
		{"stop words only", "of the", []string{}},
		{"stems and dedupes", "Learning learns machine", []string{"learn", "machin"}},
		{"drops stop words", "master of software engineering", []string{"master", "softwar", "engin"}},
		{"punctuation", "ACM!!", []string{"acm"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Parse(tt.query, n)
			if !reflect.DeepEqual(plan.Terms, tt.want) {
				t.Errorf("Parse(%q).Terms = %v, want %v", tt.query, plan.Terms, tt.want)
			}
			if plan.RawQuery != tt.query {
				t.Errorf("RawQuery = %q", plan.RawQuery)
			}
		})
	}
}

func TestKeyIgnoresOrder(t *testing.T) {
	n := tokenizer.NewQueryNormalizer(tokenizer.IdentityStemmer{}, true)
	a := Parse("machine learning", n)
	b := Parse("Learning, MACHINE", n)
	if a.Key() != b.Key() {
		t.Errorf("keys differ: %q vs %q", a.Key(), b.Key())
	}
}
