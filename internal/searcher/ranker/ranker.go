package ranker

import (
	"math"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/index"
)

// ScoredDoc is a candidate document and its tf-idf score.
type ScoredDoc struct {
	DocID int     `json:"doc_id"`
	Score float64 `json:"score"`
}

// Result is one entry of a ranked result list.
type Result struct {
	DocID int     `json:"doc_id"`
	URL   string  `json:"url"`
	Score float64 `json:"score"`
}

// Rank scores every candidate against terms and sorts by score descending,
// ties broken by ascending doc id. Contributions are summed in terms order
// so equal tf vectors always produce bit-identical scores. totalDocs is the
// number of indexed documents.
func Rank(terms []string, postingsPerTerm map[string]index.Postings, candidates map[int]struct{}, totalDocs int) []ScoredDoc {
	idf := make([]float64, len(terms))
	for i, term := range terms {
		idf[i] = computeIDF(totalDocs, len(postingsPerTerm[term]))
	}
	result := make([]ScoredDoc, 0, len(candidates))
	for docID := range candidates {
		var score float64
		for i, term := range terms {
			score += computeTF(postingsPerTerm[term][docID]) * idf[i]
		}
		result = append(result, ScoredDoc{DocID: docID, Score: score})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].DocID < result[j].DocID
	})
	return result
}

// Resolve maps ranked doc ids to URLs, keeps only the first (highest
// ranked) document per URL and truncates to limit. Documents without a
// known URL are never collapsed into each other. A non-positive limit keeps
// everything.
func Resolve(ranked []ScoredDoc, urlOf func(docID int) string, limit int) []Result {
	results := make([]Result, 0, min(len(ranked), max(limit, 0)))
	seen := make(map[string]struct{})
	for _, doc := range ranked {
		if limit > 0 && len(results) >= limit {
			break
		}
		url := urlOf(doc.DocID)
		if url != "" {
			if _, dup := seen[url]; dup {
				continue
			}
			seen[url] = struct{}{}
		}
		results = append(results, Result{
			DocID: doc.DocID,
			URL:   url,
			Score: round6(doc.Score),
		})
	}
	return results
}

// computeIDF is the smoothed inverse document frequency
// ln((N+1)/(df+1)) + 1.
func computeIDF(totalDocs int, docFreq int) float64 {
	return math.Log(float64(totalDocs+1)/float64(docFreq+1)) + 1
}

// computeTF is the log-scaled term frequency 1 + ln(tf); zero when the term
// does not occur.
func computeTF(tf int) float64 {
	if tf <= 0 {
		return 0
	}
	return 1 + math.Log(float64(tf))
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
