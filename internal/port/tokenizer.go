package port

import "scholar/internal/domain"

// Tokenizer turns document fields and queries into stemmed terms. The same
// stemming must be applied at index and query time.
type Tokenizer interface {
	// TokenizeDocument emits tokens for all indexed fields in order, with
	// global positions increasing across the whole document.
	TokenizeDocument(doc domain.Document) []domain.Token

	// TokenizeQuery stems a free-text query into lookup terms.
	TokenizeQuery(query string) []string
}
