package port

import "scholar/internal/domain"

// Retriever defines the interface for ranked search over the index.
type Retriever interface {
	// Search returns the top-k results for the query, best first. Unknown
	// terms and empty result sets are not errors.
	Search(query string, k int) ([]domain.SearchResult, error)
}

// Suggester completes term prefixes.
type Suggester interface {
	Suggest(prefix string, limit int) []string
}
