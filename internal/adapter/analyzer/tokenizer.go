package analyzer

import (
	"strings"
	"unicode"

	"scholar/internal/domain"
)

// Tokenizer produces stemmed tokens from document fields and queries.
// Document and query tokenization must use the same stemmer; result
// correctness depends on the two sides agreeing term for term.
type Tokenizer struct {
	stemmer *PorterStemmer
}

// NewTokenizer creates a new Tokenizer.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{stemmer: NewPorterStemmer()}
}

// TokenizeDocument tokenizes all indexed fields in order (title, authors,
// categories, abstract). Global positions increase monotonically across the
// whole document; proximity scoring depends on this ordering. Tokens that
// clean down to a single character are skipped without aborting the document.
func (t *Tokenizer) TokenizeDocument(doc domain.Document) []domain.Token {
	var tokens []domain.Token
	pos := 0

	for _, field := range domain.Fields {
		text := strings.ToLower(doc.Text(field))
		if text == "" {
			continue
		}
		for _, word := range strings.Fields(text) {
			word = cleanWord(word)
			if len(word) < 2 {
				continue
			}
			tokens = append(tokens, domain.Token{
				Term:  t.stemmer.Stem(word),
				Field: field,
				Pos:   pos,
			})
			pos++
		}
	}
	return tokens
}

// TokenizeQuery lowercases, splits on whitespace and stems each token.
func (t *Tokenizer) TokenizeQuery(query string) []string {
	words := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(words))
	for _, w := range words {
		terms = append(terms, t.stemmer.Stem(w))
	}
	return terms
}

// cleanWord keeps letters, digits and hyphens.
func cleanWord(word string) string {
	var b strings.Builder
	for _, r := range word {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
