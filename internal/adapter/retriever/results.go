package retriever

import (
	"sort"
	"unicode/utf8"

	"scholar/internal/adapter/store"
	"scholar/internal/domain"
)

const snippetLen = 200

type scoredID struct {
	docID string
	score float64
}

// rankTop returns the top-k entries by score descending. Ties break on
// ascending doc ID so ranking never depends on map iteration order.
func rankTop(scores map[string]float64, k int) []scoredID {
	ranked := make([]scoredID, 0, len(scores))
	for id, score := range scores {
		ranked = append(ranked, scoredID{docID: id, score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].docID < ranked[j].docID
	})
	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// topMap trims a score map to its top-k entries.
func topMap(scores map[string]float64, k int) map[string]float64 {
	if k <= 0 || len(scores) <= k {
		return scores
	}
	trimmed := make(map[string]float64, k)
	for _, s := range rankTop(scores, k) {
		trimmed[s.docID] = s.score
	}
	return trimmed
}

// minMaxNormalize scales scores to [0,1]. When every score is equal the
// result is uniformly 1.0, avoiding a zero division.
func minMaxNormalize(scores map[string]float64) map[string]float64 {
	if len(scores) == 0 {
		return map[string]float64{}
	}
	first := true
	var mn, mx float64
	for _, v := range scores {
		if first {
			mn, mx = v, v
			first = false
			continue
		}
		if v < mn {
			mn = v
		}
		if v > mx {
			mx = v
		}
	}
	norm := make(map[string]float64, len(scores))
	if mn == mx {
		for k := range scores {
			norm[k] = 1.0
		}
		return norm
	}
	for k, v := range scores {
		norm[k] = (v - mn) / (mx - mn)
	}
	return norm
}

// buildResults attaches document metadata to a ranked list. Documents
// missing from metadata (stale barrel entries awaiting rebuild) keep their
// ID and score only.
func buildResults(st *store.IndexStore, ranked []scoredID) []domain.SearchResult {
	results := make([]domain.SearchResult, 0, len(ranked))
	for _, r := range ranked {
		result := domain.SearchResult{DocID: r.docID, Score: r.score}
		if doc, ok := st.Document(r.docID); ok {
			result.Title = doc.Title
			result.Authors = doc.Authors
			result.PaperURL = doc.PaperURL
			if len(doc.Abstract) > snippetLen {
				result.Snippet = truncateRunes(doc.Abstract, snippetLen) + "..."
			} else {
				result.Snippet = doc.Abstract
			}
		}
		results = append(results, result)
	}
	return results
}

// truncateRunes shortens s to at most n bytes without splitting a rune.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
