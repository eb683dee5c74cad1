package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"

	"scholar/internal/domain"
)

const (
	lexiconFile  = "lexicon.json"
	forwardFile  = "forward_index.json"
	invertedFile = "inverted_index.json"
	metadataFile = "metadata.json"
	statsFile    = "stats.json"
	barrelsDir   = "barrels"

	// EmbeddingsFile is the externally produced embedding artifact.
	EmbeddingsFile = "embeddings.json"
)

// IndexStore owns the index structures (lexicon, forward and inverted index,
// barrel shards, document metadata) and their JSON persistence. Each posting
// is stored once: the forward index holds it and the inverted index and
// barrel shards reference the same value, so the two views cannot diverge.
//
// The store is not safe for concurrent use; callers serialize mutation and
// commit through a single writer.
type IndexStore struct {
	dir string
	log *slog.Logger

	loaded   bool
	dirty    bool
	lexicon  *Lexicon
	forward  map[string]map[int]*domain.Posting
	inverted map[int]map[string]*domain.Posting
	meta     map[string]domain.Document
	stats    domain.Stats
	barrels  *BarrelStore
}

// Open creates an IndexStore over dir and loads any persisted state.
// Missing artifacts mean an empty index, never an error.
func Open(dir string, log *slog.Logger) (*IndexStore, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &IndexStore{dir: dir, log: log}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the store's data directory.
func (s *IndexStore) Dir() string {
	return s.dir
}

func (s *IndexStore) load() error {
	s.barrels = NewBarrelStore(filepath.Join(s.dir, barrelsDir), s.log)

	var lexWire map[string]int
	if _, err := readJSONFile(filepath.Join(s.dir, lexiconFile), &lexWire); err != nil {
		return err
	}
	s.lexicon = lexiconFromMap(lexWire)

	if err := s.loadForward(); err != nil {
		return err
	}
	s.rebuildInvertedFromForward()

	// Reset before the corruption check: a legacy or divergent persisted
	// inverted index marks the store dirty so the next commit rewrites the
	// canonical form.
	s.dirty = false
	s.checkPersistedInverted()

	var docs []domain.Document
	if _, err := readJSONFile(filepath.Join(s.dir, metadataFile), &docs); err != nil {
		return err
	}
	s.meta = make(map[string]domain.Document, len(docs))
	for _, d := range docs {
		s.meta[d.ID] = d
	}

	s.stats = domain.Stats{}
	if _, err := readJSONFile(filepath.Join(s.dir, statsFile), &s.stats); err != nil {
		return err
	}

	s.loaded = true
	return nil
}

func (s *IndexStore) loadForward() error {
	var wire map[string]map[string]domain.Posting
	if _, err := readJSONFile(filepath.Join(s.dir, forwardFile), &wire); err != nil {
		return err
	}
	s.forward = make(map[string]map[int]*domain.Posting, len(wire))
	for docID, terms := range wire {
		entry := make(map[int]*domain.Posting, len(terms))
		for idStr, p := range terms {
			id, err := strconv.Atoi(idStr)
			if err != nil {
				s.log.Warn("forward index has non-numeric term id, dropping entry",
					"doc_id", docID, "term_id", idStr)
				continue
			}
			posting := p
			entry[id] = &posting
		}
		s.forward[docID] = entry
	}
	return nil
}

// rebuildInvertedFromForward derives the inverted view from the forward
// index, sharing posting values between the two.
func (s *IndexStore) rebuildInvertedFromForward() {
	s.inverted = make(map[int]map[string]*domain.Posting)
	for docID, terms := range s.forward {
		for termID, posting := range terms {
			docs, ok := s.inverted[termID]
			if !ok {
				docs = make(map[string]*domain.Posting)
				s.inverted[termID] = docs
			}
			docs[docID] = posting
		}
	}
}

// checkPersistedInverted compares the persisted inverted index against the
// one derived from the forward index. Legacy doc-list entries and divergent
// postings are reported and auto-normalized: the forward index is the source
// of truth, and the canonical form is rewritten on the next commit.
func (s *IndexStore) checkPersistedInverted() {
	var raw map[string]json.RawMessage
	found, err := readJSONFile(filepath.Join(s.dir, invertedFile), &raw)
	if err != nil {
		s.log.Warn("inverted index unreadable, rebuilt from forward index", "error", err)
		s.dirty = true
		return
	}
	if !found {
		return
	}

	if len(raw) != len(s.inverted) {
		s.log.Warn("inverted index term count diverged from forward index, normalized",
			"persisted", len(raw), "derived", len(s.inverted))
		s.dirty = true
	}

	for idStr, entry := range raw {
		id, convErr := strconv.Atoi(idStr)
		if convErr != nil {
			s.log.Warn("inverted index has non-numeric term id, normalized away", "term_id", idStr)
			s.dirty = true
			continue
		}

		var docs map[string]domain.Posting
		if err := json.Unmarshal(entry, &docs); err != nil {
			// Legacy shape: a bare list of doc IDs instead of postings.
			var legacy []string
			if err := json.Unmarshal(entry, &legacy); err == nil {
				s.log.Warn("inverted index entry uses legacy doc-list shape, normalized from forward index",
					"term_id", id, "docs", len(legacy))
			} else {
				s.log.Warn("inverted index entry unparseable, normalized from forward index",
					"term_id", id)
			}
			s.dirty = true
			continue
		}

		mirror := s.inverted[id]
		if len(docs) != len(mirror) {
			s.log.Warn("inverted index entry diverged from forward index, normalized",
				"term_id", id, "persisted", len(docs), "derived", len(mirror))
			s.dirty = true
			continue
		}
		for docID, p := range docs {
			if mp, ok := mirror[docID]; !ok || !mp.Equal(&p) {
				s.log.Warn("inverted index posting diverged from forward index, normalized",
					"term_id", id, "doc_id", docID)
				s.dirty = true
				break
			}
		}
	}
}

// ensure reloads persisted state after an Unload.
func (s *IndexStore) ensure() error {
	if s.loaded {
		return nil
	}
	return s.load()
}

// HasDoc reports whether the document is in the forward index.
func (s *IndexStore) HasDoc(id string) bool {
	if err := s.ensure(); err != nil {
		s.log.Error("index reload failed", "error", err)
		return false
	}
	_, ok := s.forward[id]
	return ok
}

// AddDocument installs the document's postings into the forward index, the
// inverted index and the barrel shards. All three reference the same posting
// values. The caller guarantees the document is not already present and that
// terms are interned in the lexicon.
func (s *IndexStore) AddDocument(doc domain.Document, postings map[int]*domain.Posting) error {
	if err := s.ensure(); err != nil {
		return err
	}

	s.forward[doc.ID] = postings
	for termID, posting := range postings {
		docs, ok := s.inverted[termID]
		if !ok {
			docs = make(map[string]*domain.Posting)
			s.inverted[termID] = docs
		}
		docs[doc.ID] = posting

		term, ok := s.lexicon.TermOf(termID)
		if !ok {
			return fmt.Errorf("term id %d not in lexicon", termID)
		}
		s.barrels.Put(term, termID, doc.ID, posting)
	}
	s.meta[doc.ID] = doc
	s.dirty = true
	return nil
}

// RemoveDocument drops the document from the inverted index, the forward
// index and metadata. Terms whose inverted entry becomes empty are deleted
// (the lexicon keeps the term and its ID). Barrel shards are intentionally
// left stale; RebuildBarrels reconciles them later.
func (s *IndexStore) RemoveDocument(id string) error {
	if err := s.ensure(); err != nil {
		return err
	}
	terms, ok := s.forward[id]
	if !ok {
		return fmt.Errorf("remove %q: %w", id, domain.ErrNotFound)
	}
	for termID := range terms {
		if docs, ok := s.inverted[termID]; ok {
			delete(docs, id)
			if len(docs) == 0 {
				delete(s.inverted, termID)
			}
		}
	}
	delete(s.forward, id)
	delete(s.meta, id)
	s.dirty = true
	return nil
}

// Dirty reports whether there is uncommitted state.
func (s *IndexStore) Dirty() bool {
	return s.dirty || (s.barrels != nil && s.barrels.DirtyCount() > 0)
}

// Commit persists the lexicon, both index views, metadata, stats and the
// dirty barrel shards, each file written atomically. With no pending changes
// it is a no-op. On failure the in-memory state is kept so the caller can
// retry.
func (s *IndexStore) Commit() error {
	if err := s.ensure(); err != nil {
		return err
	}
	if !s.Dirty() {
		return nil
	}

	if err := writeJSONAtomic(filepath.Join(s.dir, lexiconFile), s.lexicon.toMap()); err != nil {
		return err
	}

	forwardWire := make(map[string]map[string]*domain.Posting, len(s.forward))
	for docID, terms := range s.forward {
		entry := make(map[string]*domain.Posting, len(terms))
		for termID, p := range terms {
			entry[strconv.Itoa(termID)] = p
		}
		forwardWire[docID] = entry
	}
	if err := writeJSONAtomic(filepath.Join(s.dir, forwardFile), forwardWire); err != nil {
		return err
	}

	invertedWire := make(map[string]map[string]*domain.Posting, len(s.inverted))
	for termID, docs := range s.inverted {
		invertedWire[strconv.Itoa(termID)] = docs
	}
	if err := writeJSONAtomic(filepath.Join(s.dir, invertedFile), invertedWire); err != nil {
		return err
	}

	docs := make([]domain.Document, 0, len(s.meta))
	for _, d := range s.meta {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	if err := writeJSONAtomic(filepath.Join(s.dir, metadataFile), docs); err != nil {
		return err
	}

	if err := s.barrels.FlushDirty(); err != nil {
		return err
	}

	postings := 0
	for _, terms := range s.forward {
		postings += len(terms)
	}
	stats := domain.Stats{
		Terms:      s.lexicon.Len(),
		Documents:  len(s.forward),
		Postings:   postings,
		Generation: s.stats.Generation + 1,
	}
	if err := writeJSONAtomic(filepath.Join(s.dir, statsFile), stats); err != nil {
		return err
	}

	s.stats = stats
	s.dirty = false
	return nil
}

// RebuildBarrels rewrites every barrel shard from the forward index.
func (s *IndexStore) RebuildBarrels() error {
	if err := s.ensure(); err != nil {
		return err
	}
	return s.barrels.RebuildFrom(s.forward, s.lexicon)
}

// Unload drops all in-memory state, uncommitted changes included. The next
// operation reloads from disk.
func (s *IndexStore) Unload() {
	s.loaded = false
	s.dirty = false
	s.lexicon = nil
	s.forward = nil
	s.inverted = nil
	s.meta = nil
	s.stats = domain.Stats{}
	if s.barrels != nil {
		s.barrels.Unload()
	}
}

// Lexicon returns the term table.
func (s *IndexStore) Lexicon() *Lexicon {
	if err := s.ensure(); err != nil {
		s.log.Error("index reload failed", "error", err)
		return NewLexicon()
	}
	return s.lexicon
}

// PostingsFor returns the postings for a term, fetched from its barrel
// shard. Unknown terms yield nil.
func (s *IndexStore) PostingsFor(term string) (map[string]*domain.Posting, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	id, ok := s.lexicon.ID(term)
	if !ok {
		return nil, nil
	}
	return s.barrels.Get(ShardKey(term))[id], nil
}

// ForwardPostings returns the forward index entry for a document.
func (s *IndexStore) ForwardPostings(docID string) map[int]*domain.Posting {
	if err := s.ensure(); err != nil {
		s.log.Error("index reload failed", "error", err)
		return nil
	}
	return s.forward[docID]
}

// Document returns the stored metadata for a document ID.
func (s *IndexStore) Document(id string) (domain.Document, bool) {
	if err := s.ensure(); err != nil {
		s.log.Error("index reload failed", "error", err)
		return domain.Document{}, false
	}
	d, ok := s.meta[id]
	return d, ok
}

// Documents returns all document metadata sorted by ID.
func (s *IndexStore) Documents() []domain.Document {
	if err := s.ensure(); err != nil {
		s.log.Error("index reload failed", "error", err)
		return nil
	}
	docs := make([]domain.Document, 0, len(s.meta))
	for _, d := range s.meta {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}

// DocCount returns the corpus size.
func (s *IndexStore) DocCount() int {
	if err := s.ensure(); err != nil {
		s.log.Error("index reload failed", "error", err)
		return 0
	}
	return len(s.forward)
}

// Stats returns the last committed stats plus live counts.
func (s *IndexStore) Stats() domain.Stats {
	if err := s.ensure(); err != nil {
		s.log.Error("index reload failed", "error", err)
		return domain.Stats{}
	}
	postings := 0
	for _, terms := range s.forward {
		postings += len(terms)
	}
	return domain.Stats{
		Terms:      s.lexicon.Len(),
		Documents:  len(s.forward),
		Postings:   postings,
		Generation: s.stats.Generation,
	}
}

// VerifyMirror checks that the forward and inverted index are exact mirrors:
// every (doc, term) posting exists in both views and is value-equal.
func (s *IndexStore) VerifyMirror() error {
	if err := s.ensure(); err != nil {
		return err
	}
	forwardCount := 0
	for docID, terms := range s.forward {
		for termID, p := range terms {
			forwardCount++
			mp, ok := s.inverted[termID][docID]
			if !ok {
				return fmt.Errorf("inverted index missing term %d for doc %q", termID, docID)
			}
			if !mp.Equal(p) {
				return fmt.Errorf("posting mismatch for term %d doc %q", termID, docID)
			}
		}
	}
	invertedCount := 0
	for _, docs := range s.inverted {
		invertedCount += len(docs)
	}
	if forwardCount != invertedCount {
		return fmt.Errorf("index views disagree: %d forward postings, %d inverted", forwardCount, invertedCount)
	}
	return nil
}
