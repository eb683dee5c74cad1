package retriever

import (
	"scholar/internal/adapter/store"
	"scholar/internal/domain"
)

// DefaultAlpha is the semantic share of the hybrid blend.
const DefaultAlpha = 0.3

// HybridRetriever fuses keyword and semantic rankings. Both sides are
// scored over a widened candidate pool, min-max normalized and combined as
// (1-alpha)*keyword + alpha*semantic. When the semantic side cannot run the
// output is exactly the keyword ranking.
type HybridRetriever struct {
	store    *store.IndexStore
	keyword  *KeywordRetriever
	semantic *SemanticRetriever
	alpha    float64
}

// NewHybridRetriever creates a hybrid retriever with the default blend.
func NewHybridRetriever(st *store.IndexStore, kw *KeywordRetriever, sem *SemanticRetriever) *HybridRetriever {
	return &HybridRetriever{store: st, keyword: kw, semantic: sem, alpha: DefaultAlpha}
}

// WithAlpha overrides the semantic blend weight and returns the retriever.
func (r *HybridRetriever) WithAlpha(alpha float64) *HybridRetriever {
	if alpha >= 0 && alpha <= 1 {
		r.alpha = alpha
	}
	return r
}

// Search returns the top-k fused results for the query.
func (r *HybridRetriever) Search(query string, k int) ([]domain.SearchResult, error) {
	pool := 2 * k
	kwScores, err := r.keyword.Scores(query, pool)
	if err != nil {
		return nil, err
	}
	semScores, semOK, err := r.semantic.Scores(query, pool)
	if err != nil {
		return nil, err
	}

	if !semOK || len(semScores) == 0 {
		return buildResults(r.store, rankTop(kwScores, k)), nil
	}
	if len(kwScores) == 0 {
		return buildResults(r.store, rankTop(semScores, k)), nil
	}

	kwNorm := minMaxNormalize(kwScores)
	semNorm := minMaxNormalize(semScores)
	combined := make(map[string]float64, len(kwNorm)+len(semNorm))
	for id, s := range kwNorm {
		combined[id] += (1 - r.alpha) * s
	}
	for id, s := range semNorm {
		combined[id] += r.alpha * s
	}
	return buildResults(r.store, rankTop(combined, k)), nil
}
