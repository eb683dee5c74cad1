package suggest

import (
	"strings"

	"scholar/internal/domain"
)

// abstractScanLen bounds how much abstract text feeds the popularity count;
// titles carry most of the suggestion signal.
const abstractScanLen = 200

// BuildPopularity counts word frequency across titles and abstract prefixes.
// Only fully alphabetic words of at least MinWordLen survive, matching what
// the trie will accept.
func BuildPopularity(docs []domain.Document) map[string]int {
	popularity := make(map[string]int)
	for _, doc := range docs {
		countWords(doc.Title, popularity)
		abstract := doc.Abstract
		if len(abstract) > abstractScanLen {
			abstract = abstract[:abstractScanLen]
		}
		countWords(abstract, popularity)
	}
	return popularity
}

func countWords(text string, popularity map[string]int) {
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,;:!?()[]{}\"'")
		if len(word) < MinWordLen || !isAlphabetic(word) {
			continue
		}
		popularity[word]++
	}
}
