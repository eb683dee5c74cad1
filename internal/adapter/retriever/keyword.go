package retriever

import (
	"math"

	"scholar/internal/adapter/store"
	"scholar/internal/domain"
	"scholar/internal/port"
)

// FieldWeights scales a term's per-field frequency by where it appears.
type FieldWeights struct {
	Title      float64
	Authors    float64
	Categories float64
	Abstract   float64
}

// DefaultFieldWeights favors title matches, then authors and categories.
var DefaultFieldWeights = FieldWeights{
	Title:      3.0,
	Authors:    2.0,
	Categories: 1.5,
	Abstract:   1.0,
}

// KeywordRetriever ranks documents with field-weighted TF-IDF over the
// barrel shards. Proximity and field-coverage bonuses blend in with
// configurable weights; both default to zero.
type KeywordRetriever struct {
	store           *store.IndexStore
	tokenizer       port.Tokenizer
	weights         FieldWeights
	proximityWeight float64
	coverageWeight  float64
}

// NewKeywordRetriever creates a keyword retriever with the default field
// weights and no bonus blending.
func NewKeywordRetriever(st *store.IndexStore, tok port.Tokenizer) *KeywordRetriever {
	return &KeywordRetriever{store: st, tokenizer: tok, weights: DefaultFieldWeights}
}

// WithBonuses sets the blend weights for the proximity and field-coverage
// bonuses and returns the retriever.
func (r *KeywordRetriever) WithBonuses(proximity, coverage float64) *KeywordRetriever {
	r.proximityWeight = proximity
	r.coverageWeight = coverage
	return r
}

// Search returns the top-k documents for the query.
func (r *KeywordRetriever) Search(query string, k int) ([]domain.SearchResult, error) {
	scores, err := r.scoreAll(query)
	if err != nil {
		return nil, err
	}
	return buildResults(r.store, rankTop(scores, k)), nil
}

// Scores returns the top-k raw keyword scores, for fusion by the hybrid
// retriever.
func (r *KeywordRetriever) Scores(query string, k int) (map[string]float64, error) {
	scores, err := r.scoreAll(query)
	if err != nil {
		return nil, err
	}
	return topMap(scores, k), nil
}

func (r *KeywordRetriever) scoreAll(query string) (map[string]float64, error) {
	terms := r.tokenizer.TokenizeQuery(query)
	if len(terms) == 0 {
		return nil, nil
	}

	// Deduplicate while keeping query length for the coverage exponent.
	seen := make(map[string]bool, len(terms))
	distinct := make([]string, 0, len(terms))
	for _, t := range terms {
		if !seen[t] {
			seen[t] = true
			distinct = append(distinct, t)
		}
	}

	n := float64(r.store.DocCount())
	scores := make(map[string]float64)
	matched := make(map[string]int)
	matchedTerms := make(map[string][]string)

	for _, term := range distinct {
		postings, err := r.store.PostingsFor(term)
		if err != nil {
			return nil, err
		}
		if len(postings) == 0 {
			continue
		}
		idf := math.Log(n / (1 + float64(len(postings))))
		for docID, p := range postings {
			scores[docID] += r.termScore(p, idf)
			matched[docID]++
			matchedTerms[docID] = append(matchedTerms[docID], term)
		}
	}

	// Documents covering more of the query double up per extra term.
	qlen := float64(len(terms))
	for docID := range scores {
		scores[docID] *= math.Exp2(2 * float64(matched[docID]) / qlen)
	}

	if r.proximityWeight > 0 || r.coverageWeight > 0 {
		r.applyBonuses(scores, matchedTerms, distinct)
	}
	return scores, nil
}

// termScore is the per-document contribution of one query term: the
// field-weighted frequency, dampened by log of total frequency, scaled
// by the term's IDF.
func (r *KeywordRetriever) termScore(p *domain.Posting, idf float64) float64 {
	fieldScore := float64(p.Title)*r.weights.Title +
		float64(p.Authors)*r.weights.Authors +
		float64(p.Categories)*r.weights.Categories +
		float64(p.Abstract)*r.weights.Abstract
	return fieldScore * (1 + math.Log(1+float64(p.TotalFreq))) * idf
}

func (r *KeywordRetriever) applyBonuses(scores map[string]float64, matchedTerms map[string][]string, queryTerms []string) {
	lex := r.store.Lexicon()
	for docID := range scores {
		if r.proximityWeight > 0 {
			forward := r.store.ForwardPostings(docID)
			lists := make([][]int, 0, len(matchedTerms[docID]))
			for _, term := range matchedTerms[docID] {
				id, ok := lex.ID(term)
				if !ok {
					continue
				}
				if p, ok := forward[id]; ok {
					lists = append(lists, p.Positions)
				}
			}
			scores[docID] += r.proximityWeight * ProximityBonus(lists)
		}
		if r.coverageWeight > 0 {
			if doc, ok := r.store.Document(docID); ok {
				scores[docID] += r.coverageWeight * FieldCoverageBonus(doc, queryTerms)
			}
		}
	}
}
