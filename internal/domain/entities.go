package domain

import (
	"encoding/json"
	"fmt"
)

// Document is a validated paper record. Validation (non-empty ID, at least
// one content field) happens before a document reaches the index.
type Document struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Authors    string `json:"authors"`
	Categories string `json:"categories"`
	Abstract   string `json:"abstract"`
	PaperURL   string `json:"paper_url,omitempty"`
}

// Field identifies one of the indexed document fields, in tokenization order.
type Field int

const (
	FieldTitle Field = iota
	FieldAuthors
	FieldCategories
	FieldAbstract
)

// Fields lists the indexed fields in the order they are tokenized. Global
// token positions increase across the whole document in this order.
var Fields = [...]Field{FieldTitle, FieldAuthors, FieldCategories, FieldAbstract}

func (f Field) String() string {
	switch f {
	case FieldTitle:
		return "title"
	case FieldAuthors:
		return "authors"
	case FieldCategories:
		return "categories"
	case FieldAbstract:
		return "abstract"
	}
	return "unknown"
}

// Text returns the document text for the field.
func (d Document) Text(f Field) string {
	switch f {
	case FieldTitle:
		return d.Title
	case FieldAuthors:
		return d.Authors
	case FieldCategories:
		return d.Categories
	case FieldAbstract:
		return d.Abstract
	}
	return ""
}

// Token is one stemmed term occurrence produced by the tokenizer.
type Token struct {
	Term  string
	Field Field
	Pos   int
}

// Posting holds per (document, term) statistics. The same posting value is
// shared between the forward and inverted index views.
//
// Invariant: TotalFreq == len(Positions) == sum of the field counts.
type Posting struct {
	TotalFreq  int
	Positions  []int
	Title      int
	Authors    int
	Categories int
	Abstract   int
}

// Add records one occurrence at the given global position.
func (p *Posting) Add(pos int, f Field) {
	p.TotalFreq++
	p.Positions = append(p.Positions, pos)
	switch f {
	case FieldTitle:
		p.Title++
	case FieldAuthors:
		p.Authors++
	case FieldCategories:
		p.Categories++
	case FieldAbstract:
		p.Abstract++
	}
}

// FieldCount returns the occurrence count for the field.
func (p *Posting) FieldCount(f Field) int {
	switch f {
	case FieldTitle:
		return p.Title
	case FieldAuthors:
		return p.Authors
	case FieldCategories:
		return p.Categories
	case FieldAbstract:
		return p.Abstract
	}
	return 0
}

// Validate checks the posting invariant.
func (p *Posting) Validate() error {
	sum := p.Title + p.Authors + p.Categories + p.Abstract
	if p.TotalFreq != len(p.Positions) || p.TotalFreq != sum {
		return fmt.Errorf("posting invariant violated: freq=%d positions=%d fields=%d",
			p.TotalFreq, len(p.Positions), sum)
	}
	for i := 1; i < len(p.Positions); i++ {
		if p.Positions[i] <= p.Positions[i-1] {
			return fmt.Errorf("posting positions not strictly increasing at %d", i)
		}
	}
	return nil
}

// Equal reports value equality between two postings.
func (p *Posting) Equal(o *Posting) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.TotalFreq != o.TotalFreq || p.Title != o.Title || p.Authors != o.Authors ||
		p.Categories != o.Categories || p.Abstract != o.Abstract ||
		len(p.Positions) != len(o.Positions) {
		return false
	}
	for i, pos := range p.Positions {
		if o.Positions[i] != pos {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the posting in its on-disk array form:
// [total_freq, positions, title, authors, categories, abstract].
func (p Posting) MarshalJSON() ([]byte, error) {
	positions := p.Positions
	if positions == nil {
		positions = []int{}
	}
	return json.Marshal([]any{p.TotalFreq, positions, p.Title, p.Authors, p.Categories, p.Abstract})
}

// UnmarshalJSON decodes the array form.
func (p *Posting) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("posting is not an array: %w", err)
	}
	if len(raw) != 6 {
		return fmt.Errorf("posting has %d elements, want 6", len(raw))
	}
	counts := make([]int, 0, 5)
	for i, field := range []int{0, 2, 3, 4, 5} {
		var n int
		if err := json.Unmarshal(raw[field], &n); err != nil {
			return fmt.Errorf("posting element %d: %w", i, err)
		}
		counts = append(counts, n)
	}
	var positions []int
	if err := json.Unmarshal(raw[1], &positions); err != nil {
		return fmt.Errorf("posting positions: %w", err)
	}
	p.TotalFreq = counts[0]
	p.Positions = positions
	p.Title = counts[1]
	p.Authors = counts[2]
	p.Categories = counts[3]
	p.Abstract = counts[4]
	return nil
}

// SearchResult is one ranked hit with metadata attached for display.
type SearchResult struct {
	DocID    string  `json:"doc_id"`
	Score    float64 `json:"score"`
	Title    string  `json:"title,omitempty"`
	Authors  string  `json:"authors,omitempty"`
	PaperURL string  `json:"paper_url,omitempty"`
	Snippet  string  `json:"snippet,omitempty"`
}

// Stats describes the committed index. Generation increments on every
// commit and drives cross-process cache invalidation.
type Stats struct {
	Terms      int    `json:"terms"`
	Documents  int    `json:"documents"`
	Postings   int    `json:"postings"`
	Generation uint64 `json:"generation"`
}
