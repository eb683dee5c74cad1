package retriever

import (
	"sort"

	"scholar/internal/adapter/store"
	"scholar/internal/domain"
	"scholar/internal/port"
)

// DefaultSeedDocs bounds how many keyword-matched documents seed the
// pseudo-relevance query vector.
const DefaultSeedDocs = 30

// SemanticRetriever ranks by cosine similarity against precomputed document
// embeddings. There is no query encoder; the query vector is the mean
// embedding of documents that match the query lexically. Without an
// embedding artifact, or when no seed documents exist, it degrades to the
// keyword retriever.
type SemanticRetriever struct {
	store      *store.IndexStore
	tokenizer  port.Tokenizer
	embeddings *store.EmbeddingMatrix
	keyword    *KeywordRetriever
	seedDocs   int
}

// NewSemanticRetriever creates a semantic retriever over the embedding
// artifact, with kw as the degradation path.
func NewSemanticRetriever(st *store.IndexStore, tok port.Tokenizer, emb *store.EmbeddingMatrix, kw *KeywordRetriever) *SemanticRetriever {
	return &SemanticRetriever{
		store:      st,
		tokenizer:  tok,
		embeddings: emb,
		keyword:    kw,
		seedDocs:   DefaultSeedDocs,
	}
}

// WithSeedDocs overrides the seed document cap and returns the retriever.
func (r *SemanticRetriever) WithSeedDocs(n int) *SemanticRetriever {
	if n > 0 {
		r.seedDocs = n
	}
	return r
}

// Search returns the top-k documents by embedding similarity, falling back
// to keyword ranking when semantic scoring is unavailable.
func (r *SemanticRetriever) Search(query string, k int) ([]domain.SearchResult, error) {
	sims, ok, err := r.Scores(query, k)
	if err != nil {
		return nil, err
	}
	if !ok {
		return r.keyword.Search(query, k)
	}
	return buildResults(r.store, rankTop(sims, k)), nil
}

// Scores returns the top-k cosine similarities for fusion. ok is false when
// semantic scoring could not run (no embeddings, or no seed documents); the
// caller decides how to degrade.
func (r *SemanticRetriever) Scores(query string, k int) (map[string]float64, bool, error) {
	vec, err := r.queryVector(query)
	if err != nil {
		return nil, false, err
	}
	if vec == nil {
		return nil, false, nil
	}
	return topMap(r.embeddings.Similarities(vec), k), true, nil
}

// queryVector builds the pseudo-relevance query vector: the mean embedding
// of up to seedDocs lexically matched documents, in ascending doc ID order
// for determinism. Returns nil when semantic scoring cannot run.
func (r *SemanticRetriever) queryVector(query string) ([]float64, error) {
	terms := r.tokenizer.TokenizeQuery(query)
	if len(terms) == 0 {
		return nil, nil
	}
	if !r.embeddings.Load() {
		return nil, nil
	}

	seedSet := make(map[string]bool)
	for _, term := range terms {
		postings, err := r.store.PostingsFor(term)
		if err != nil {
			return nil, err
		}
		for docID := range postings {
			seedSet[docID] = true
		}
	}
	if len(seedSet) == 0 {
		return nil, nil
	}

	candidates := make([]string, 0, len(seedSet))
	for id := range seedSet {
		candidates = append(candidates, id)
	}
	sort.Strings(candidates)

	seeds := make([]string, 0, r.seedDocs)
	for _, id := range candidates {
		if !r.embeddings.Has(id) {
			continue
		}
		seeds = append(seeds, id)
		if len(seeds) == r.seedDocs {
			break
		}
	}
	return r.embeddings.Mean(seeds), nil
}
