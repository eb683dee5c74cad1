package usecase

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"scholar/internal/adapter/analyzer"
	"scholar/internal/adapter/store"
	"scholar/internal/domain"
)

func newTestIndexer(t *testing.T) (*DynamicIndexer, *store.IndexStore) {
	t.Helper()
	st, err := store.Open(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return NewDynamicIndexer(st, analyzer.NewTokenizer(), nil), st
}

func paper(id, title string) domain.Document {
	return domain.Document{ID: id, Title: title, Abstract: "about " + title}
}

func TestAddAndSearchableState(t *testing.T) {
	ix, st := newTestIndexer(t)

	if err := ix.Add(paper("doc1", "machine learning basics")); err != nil {
		t.Fatal(err)
	}
	if !st.HasDoc("doc1") {
		t.Fatal("doc not in forward index")
	}
	if err := st.VerifyMirror(); err != nil {
		t.Fatalf("mirror broken after add: %v", err)
	}

	postings, err := st.PostingsFor("learn")
	if err != nil {
		t.Fatal(err)
	}
	p, ok := postings["doc1"]
	if !ok {
		t.Fatal("posting missing from barrel view")
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("posting invariant: %v", err)
	}
	// "learning" appears in title and in the synthesized abstract.
	if p.TotalFreq != 2 || p.Title != 1 || p.Abstract != 1 {
		t.Fatalf("posting counts wrong: %+v", p)
	}
}

func TestDuplicateAddRejected(t *testing.T) {
	ix, st := newTestIndexer(t)

	if err := ix.Add(paper("doc1", "graph theory")); err != nil {
		t.Fatal(err)
	}
	if err := ix.Commit(); err != nil {
		t.Fatal(err)
	}

	statsBefore := st.Stats()
	err := ix.Add(paper("doc1", "completely different content"))
	if !errors.Is(err, domain.ErrDuplicateDocument) {
		t.Fatalf("got %v, want ErrDuplicateDocument", err)
	}

	statsAfter := st.Stats()
	if statsBefore != statsAfter {
		t.Fatalf("duplicate add changed index: %+v vs %+v", statsBefore, statsAfter)
	}
	if _, ok := st.Lexicon().ID("complet"); ok {
		t.Error("duplicate add interned new terms")
	}
}

func TestRemoveThenReAdd(t *testing.T) {
	ix, st := newTestIndexer(t)

	if err := ix.Add(paper("doc1", "quantum computing")); err != nil {
		t.Fatal(err)
	}
	if err := ix.Remove("doc1"); err != nil {
		t.Fatal(err)
	}
	if err := ix.Add(paper("doc1", "database internals")); err != nil {
		t.Fatalf("re-add after remove treated as duplicate: %v", err)
	}

	// The new forward entry carries no postings from the removed version.
	forward := st.ForwardPostings("doc1")
	lex := st.Lexicon()
	if id, ok := lex.ID("quantum"); ok {
		if _, stale := forward[id]; stale {
			t.Error("stale posting survived re-add")
		}
	}
	if err := st.VerifyMirror(); err != nil {
		t.Fatalf("mirror broken: %v", err)
	}
}

func TestRemoveUnknown(t *testing.T) {
	ix, _ := newTestIndexer(t)
	if err := ix.Remove("ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestAddValidation(t *testing.T) {
	ix, _ := newTestIndexer(t)

	if err := ix.Add(domain.Document{ID: "  "}); !errors.Is(err, domain.ErrNoIndexableContent) {
		t.Errorf("blank id: got %v", err)
	}
	if err := ix.Add(domain.Document{ID: "doc1"}); !errors.Is(err, domain.ErrNoIndexableContent) {
		t.Errorf("empty fields: got %v", err)
	}
}

func TestFieldClamping(t *testing.T) {
	ix, st := newTestIndexer(t)
	ix.WithFieldLimits(FieldLimits{Title: 10, Abstract: 10})

	long := "exceedingly long title text"
	if err := ix.Add(domain.Document{ID: "doc1", Title: long}); err != nil {
		t.Fatal(err)
	}
	doc, ok := st.Document("doc1")
	if !ok {
		t.Fatal("doc missing")
	}
	if len(doc.Title) != 10 {
		t.Fatalf("title length = %d, want 10", len(doc.Title))
	}
}

func TestFieldClampingRuneBoundary(t *testing.T) {
	ix, st := newTestIndexer(t)
	ix.WithFieldLimits(FieldLimits{Title: 9})

	// 20 two-byte runes; a byte-level cut at 9 would split the fifth rune.
	if err := ix.Add(domain.Document{ID: "doc1", Title: strings.Repeat("é", 20)}); err != nil {
		t.Fatal(err)
	}
	doc, ok := st.Document("doc1")
	if !ok {
		t.Fatal("doc missing")
	}
	if !utf8.ValidString(doc.Title) {
		t.Fatalf("clamped title is not valid UTF-8: %q", doc.Title)
	}
	if len(doc.Title) != 8 {
		t.Fatalf("title length = %d, want 8 (rune boundary below the limit)", len(doc.Title))
	}
}

func TestAutoCommitThreshold(t *testing.T) {
	ix, st := newTestIndexer(t)
	ix.WithBatchSize(3)

	for i := 0; i < 2; i++ {
		if err := ix.Add(paper(fmt.Sprintf("doc%d", i), fmt.Sprintf("topic number %d", i))); err != nil {
			t.Fatal(err)
		}
	}
	if gen := st.Stats().Generation; gen != 0 {
		t.Fatalf("committed before threshold, generation = %d", gen)
	}

	if err := ix.Add(paper("doc2", "topic number two")); err != nil {
		t.Fatal(err)
	}
	if gen := st.Stats().Generation; gen != 1 {
		t.Fatalf("generation = %d, want 1 after threshold", gen)
	}
	if ix.Pending() != 0 {
		t.Errorf("pending = %d after auto-commit", ix.Pending())
	}
}

func TestBatchAddSingleCommit(t *testing.T) {
	ix, st := newTestIndexer(t)
	ix.WithBatchSize(3) // far below the batch length

	docs := make([]domain.Document, 0, 12)
	for i := 0; i < 10; i++ {
		docs = append(docs, paper(fmt.Sprintf("doc%d", i), fmt.Sprintf("subject %d studies", i)))
	}
	docs = append(docs, paper("doc0", "duplicate entry"))   // duplicate
	docs = append(docs, domain.Document{ID: "empty-doc"}) // invalid

	var calls int
	added, failed, err := ix.BatchAdd(docs, func(done, total int) {
		calls++
		if total != 12 {
			t.Errorf("progress total = %d", total)
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if added != 10 || failed != 2 {
		t.Fatalf("batch result = (%d, %d), want (10, 2)", added, failed)
	}
	if calls != 12 {
		t.Errorf("progress calls = %d, want 12", calls)
	}

	// Exactly one commit, regardless of the auto-commit threshold.
	if gen := st.Stats().Generation; gen != 1 {
		t.Fatalf("generation = %d, want exactly 1", gen)
	}
	if st.DocCount() != 10 {
		t.Errorf("doc count = %d", st.DocCount())
	}
}

func TestUnloadDropsUncommitted(t *testing.T) {
	ix, st := newTestIndexer(t)

	if err := ix.Add(paper("doc1", "persisted work")); err != nil {
		t.Fatal(err)
	}
	if err := ix.Commit(); err != nil {
		t.Fatal(err)
	}
	if err := ix.Add(paper("doc2", "volatile work")); err != nil {
		t.Fatal(err)
	}

	ix.Unload()

	if !st.HasDoc("doc1") {
		t.Error("committed doc lost")
	}
	if st.HasDoc("doc2") {
		t.Error("uncommitted doc survived unload")
	}
	if ix.Pending() != 0 {
		t.Errorf("pending = %d after unload", ix.Pending())
	}
}

func TestRebuildBarrelsReconciles(t *testing.T) {
	ix, st := newTestIndexer(t)

	if err := ix.Add(paper("doc1", "quantum computing")); err != nil {
		t.Fatal(err)
	}
	if err := ix.Add(paper("doc2", "quantum entanglement")); err != nil {
		t.Fatal(err)
	}
	if err := ix.Remove("doc1"); err != nil {
		t.Fatal(err)
	}

	// Barrel view still holds the removed doc until rebuild.
	stale, err := st.PostingsFor("quantum")
	if err != nil {
		t.Fatal(err)
	}
	if len(stale) != 2 {
		t.Fatalf("stale barrel = %d docs, want 2", len(stale))
	}

	if err := ix.RebuildBarrels(); err != nil {
		t.Fatal(err)
	}
	fresh, err := st.PostingsFor("quantum")
	if err != nil {
		t.Fatal(err)
	}
	if len(fresh) != 1 {
		t.Fatalf("rebuilt barrel = %d docs, want 1", len(fresh))
	}
}
