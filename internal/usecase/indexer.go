package usecase

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"scholar/internal/adapter/store"
	"scholar/internal/domain"
	"scholar/internal/port"
)

// DefaultBatchSize is the auto-commit threshold for pending mutations.
const DefaultBatchSize = 10

// FieldLimits clamps document field lengths before indexing.
type FieldLimits struct {
	Title      int
	Authors    int
	Categories int
	Abstract   int
}

// DefaultFieldLimits matches the ingest contract for paper records.
var DefaultFieldLimits = FieldLimits{
	Title:      500,
	Authors:    200,
	Categories: 200,
	Abstract:   1000,
}

// DynamicIndexer coordinates document mutation across the lexicon, both
// index views and the barrel shards, and controls when the store commits.
// It auto-commits after batchSize pending mutations; BatchAdd suspends that
// and commits exactly once at the end. Not safe for concurrent use; one
// indexer per process is the expected setup.
type DynamicIndexer struct {
	store     *store.IndexStore
	tokenizer port.Tokenizer
	log       *slog.Logger
	limits    FieldLimits
	batchSize int

	pending    int
	suspendACK bool // auto-commit suspended during a batch
}

// NewDynamicIndexer creates an indexer over the store with default limits
// and batch size.
func NewDynamicIndexer(st *store.IndexStore, tok port.Tokenizer, log *slog.Logger) *DynamicIndexer {
	if log == nil {
		log = slog.Default()
	}
	return &DynamicIndexer{
		store:     st,
		tokenizer: tok,
		log:       log,
		limits:    DefaultFieldLimits,
		batchSize: DefaultBatchSize,
	}
}

// WithBatchSize overrides the auto-commit threshold and returns the indexer.
func (ix *DynamicIndexer) WithBatchSize(n int) *DynamicIndexer {
	if n > 0 {
		ix.batchSize = n
	}
	return ix
}

// WithFieldLimits overrides the field clamps and returns the indexer.
func (ix *DynamicIndexer) WithFieldLimits(limits FieldLimits) *DynamicIndexer {
	ix.limits = limits
	return ix
}

// Add validates and indexes one document. Duplicate IDs fail with
// ErrDuplicateDocument and leave every structure untouched. Crossing the
// batch threshold triggers a commit unless a batch is in flight.
func (ix *DynamicIndexer) Add(doc domain.Document) error {
	doc, err := ix.normalize(doc)
	if err != nil {
		return err
	}
	if ix.store.HasDoc(doc.ID) {
		return fmt.Errorf("add %q: %w", doc.ID, domain.ErrDuplicateDocument)
	}

	tokens := ix.tokenizer.TokenizeDocument(doc)
	if len(tokens) == 0 {
		return fmt.Errorf("add %q: %w", doc.ID, domain.ErrNoIndexableContent)
	}

	lex := ix.store.Lexicon()
	postings := make(map[int]*domain.Posting)
	for _, tok := range tokens {
		id := lex.Intern(tok.Term)
		p, ok := postings[id]
		if !ok {
			p = &domain.Posting{}
			postings[id] = p
		}
		p.Add(tok.Pos, tok.Field)
	}

	if err := ix.store.AddDocument(doc, postings); err != nil {
		return err
	}
	ix.log.Debug("document indexed", "doc_id", doc.ID, "terms", len(postings), "tokens", len(tokens))
	return ix.bumpPending()
}

// Remove drops a document from the live index views and metadata. Barrel
// shards keep their stale entries until the next rebuild. Removing an
// unknown ID fails with ErrNotFound.
func (ix *DynamicIndexer) Remove(docID string) error {
	if err := ix.store.RemoveDocument(docID); err != nil {
		return err
	}
	ix.log.Debug("document removed", "doc_id", docID)
	return ix.bumpPending()
}

// BatchAdd indexes many documents with a single commit at the end,
// regardless of the auto-commit threshold. Invalid or duplicate documents
// are skipped and counted, not fatal. progress may be nil.
func (ix *DynamicIndexer) BatchAdd(docs []domain.Document, progress func(done, total int)) (added, failed int, err error) {
	ix.suspendACK = true
	defer func() { ix.suspendACK = false }()

	for i, doc := range docs {
		if addErr := ix.Add(doc); addErr != nil {
			failed++
			ix.log.Warn("batch add skipped document", "doc_id", doc.ID, "error", addErr)
		} else {
			added++
		}
		if progress != nil {
			progress(i+1, len(docs))
		}
	}

	if err := ix.Commit(); err != nil {
		return added, failed, err
	}
	return added, failed, nil
}

// Commit persists all pending state atomically per file. A clean indexer
// commits nothing.
func (ix *DynamicIndexer) Commit() error {
	if err := ix.store.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	ix.pending = 0
	return nil
}

// RebuildBarrels rewrites every barrel shard from the forward index,
// reconciling entries left stale by removes.
func (ix *DynamicIndexer) RebuildBarrels() error {
	if err := ix.store.RebuildBarrels(); err != nil {
		return fmt.Errorf("rebuild barrels: %w", err)
	}
	ix.log.Info("barrels rebuilt", "documents", ix.store.DocCount())
	return nil
}

// Unload drops all in-memory index state, discarding uncommitted changes.
// The next operation reloads from disk.
func (ix *DynamicIndexer) Unload() {
	ix.store.Unload()
	ix.pending = 0
}

// Pending returns the number of mutations since the last commit.
func (ix *DynamicIndexer) Pending() int {
	return ix.pending
}

// Stats returns live index statistics.
func (ix *DynamicIndexer) Stats() domain.Stats {
	return ix.store.Stats()
}

func (ix *DynamicIndexer) bumpPending() error {
	ix.pending++
	if ix.suspendACK || ix.pending < ix.batchSize {
		return nil
	}
	ix.log.Debug("auto-commit threshold reached", "pending", ix.pending)
	return ix.Commit()
}

// normalize trims and clamps document fields and checks the record is
// indexable at all.
func (ix *DynamicIndexer) normalize(doc domain.Document) (domain.Document, error) {
	doc.ID = strings.TrimSpace(doc.ID)
	if doc.ID == "" {
		return doc, fmt.Errorf("document has no id: %w", domain.ErrNoIndexableContent)
	}
	doc.Title = clamp(strings.TrimSpace(doc.Title), ix.limits.Title)
	doc.Authors = clamp(strings.TrimSpace(doc.Authors), ix.limits.Authors)
	doc.Categories = clamp(strings.TrimSpace(doc.Categories), ix.limits.Categories)
	doc.Abstract = clamp(strings.TrimSpace(doc.Abstract), ix.limits.Abstract)
	if doc.Title == "" && doc.Authors == "" && doc.Categories == "" && doc.Abstract == "" {
		return doc, fmt.Errorf("document %q has no text: %w", doc.ID, domain.ErrNoIndexableContent)
	}
	return doc, nil
}

// clamp truncates s to at most max bytes without splitting a rune.
func clamp(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
