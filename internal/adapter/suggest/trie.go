package suggest

import (
	"sort"
	"strings"
)

const (
	// MinWordLen is the shortest term the trie accepts.
	MinWordLen = 3
	// MinPrefixLen is the shortest prefix autocomplete answers.
	MinPrefixLen = 2
)

type trieNode struct {
	children map[byte]*trieNode
	end      bool
	weight   int
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[byte]*trieNode)}
}

// Trie is a prefix tree over popular corpus terms, built once per engine
// instance. It is not updated by later index writes; a new engine picks up
// new terms.
type Trie struct {
	root *trieNode
	size int
}

// NewTrie returns an empty trie.
func NewTrie() *Trie {
	return &Trie{root: newTrieNode()}
}

// Insert adds a term with its popularity weight. Terms shorter than
// MinWordLen or containing non-alphabetic characters are rejected.
// Re-inserting a term keeps the higher weight.
func (t *Trie) Insert(term string, weight int) bool {
	term = strings.ToLower(term)
	if len(term) < MinWordLen || !isAlphabetic(term) {
		return false
	}
	node := t.root
	for i := 0; i < len(term); i++ {
		child, ok := node.children[term[i]]
		if !ok {
			child = newTrieNode()
			node.children[term[i]] = child
		}
		node = child
	}
	if !node.end {
		node.end = true
		t.size++
	}
	if weight > node.weight {
		node.weight = weight
	}
	return true
}

// Size returns the number of terms in the trie.
func (t *Trie) Size() int {
	return t.size
}

type completion struct {
	term   string
	weight int
}

// Autocomplete returns up to limit terms starting with prefix, most popular
// first, ties broken alphabetically. Prefixes shorter than MinPrefixLen or
// with no matching path yield nothing. Collection stops after 2*limit
// candidates so a short prefix over a large corpus stays bounded.
func (t *Trie) Autocomplete(prefix string, limit int) []string {
	prefix = strings.ToLower(prefix)
	if len(prefix) < MinPrefixLen || limit <= 0 {
		return nil
	}

	node := t.root
	for i := 0; i < len(prefix); i++ {
		child, ok := node.children[prefix[i]]
		if !ok {
			return nil
		}
		node = child
	}

	max := 2 * limit
	found := make([]completion, 0, max)
	collect(node, prefix, max, &found)

	sort.Slice(found, func(i, j int) bool {
		if found[i].weight != found[j].weight {
			return found[i].weight > found[j].weight
		}
		return found[i].term < found[j].term
	})
	if len(found) > limit {
		found = found[:limit]
	}
	terms := make([]string, len(found))
	for i, c := range found {
		terms[i] = c.term
	}
	return terms
}

// collect walks descendants in byte order so the candidate set under the
// cap is deterministic.
func collect(node *trieNode, word string, max int, found *[]completion) {
	if len(*found) >= max {
		return
	}
	if node.end {
		*found = append(*found, completion{term: word, weight: node.weight})
	}
	keys := make([]byte, 0, len(node.children))
	for b := range node.children {
		keys = append(keys, b)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, b := range keys {
		collect(node.children[b], word+string(b), max, found)
	}
}

func isAlphabetic(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}
