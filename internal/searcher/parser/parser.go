package parser

import (
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/tokenizer"
)

// QueryPlan is a normalised boolean-AND query.
type QueryPlan struct {
	Terms    []string
	RawQuery string
}

// Parse normalises query with the same pipeline used to build the index.
// Terms are distinct and keep their first-occurrence order.
func Parse(query string, normalizer *tokenizer.Normalizer) *QueryPlan {
	plan := &QueryPlan{
		Terms:    make([]string, 0),
		RawQuery: query,
	}
	if strings.TrimSpace(query) == "" {
		return plan
	}
	seen := make(map[string]struct{})
	for _, term := range normalizer.Normalize(query) {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		plan.Terms = append(plan.Terms, term)
	}
	return plan
}

// Key is a canonical form of the plan, independent of term order and
// spelling variants that normalise identically.
func (p *QueryPlan) Key() string {
	terms := make([]string, len(p.Terms))
	copy(terms, p.Terms)
	sort.Strings(terms)
	return "AND|" + strings.Join(terms, ",")
}
