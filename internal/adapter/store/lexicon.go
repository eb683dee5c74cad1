package store

import "sort"

// Lexicon is the append-only term to integer ID table. IDs start at 1,
// increase monotonically and are never reused; there is no delete.
type Lexicon struct {
	ids    map[string]int
	terms  map[int]string
	nextID int
}

// NewLexicon creates an empty lexicon.
func NewLexicon() *Lexicon {
	return &Lexicon{
		ids:    make(map[string]int),
		terms:  make(map[int]string),
		nextID: 1,
	}
}

// lexiconFromMap restores a lexicon from its persisted term→ID form.
// The next ID resumes at max(existing)+1.
func lexiconFromMap(m map[string]int) *Lexicon {
	l := NewLexicon()
	for term, id := range m {
		l.ids[term] = id
		l.terms[id] = term
		if id >= l.nextID {
			l.nextID = id + 1
		}
	}
	return l
}

// Intern returns the ID for term, allocating a new one on first sight.
func (l *Lexicon) Intern(term string) int {
	if id, ok := l.ids[term]; ok {
		return id
	}
	id := l.nextID
	l.nextID++
	l.ids[term] = id
	l.terms[id] = term
	return id
}

// ID returns the ID for a known term.
func (l *Lexicon) ID(term string) (int, bool) {
	id, ok := l.ids[term]
	return id, ok
}

// TermOf returns the term for a known ID.
func (l *Lexicon) TermOf(id int) (string, bool) {
	term, ok := l.terms[id]
	return term, ok
}

// Len returns the number of interned terms.
func (l *Lexicon) Len() int {
	return len(l.ids)
}

// Terms returns all terms in sorted order.
func (l *Lexicon) Terms() []string {
	terms := make([]string, 0, len(l.ids))
	for term := range l.ids {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

func (l *Lexicon) toMap() map[string]int {
	m := make(map[string]int, len(l.ids))
	for term, id := range l.ids {
		m[term] = id
	}
	return m
}
