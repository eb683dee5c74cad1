package usecase

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"scholar/internal/adapter/cache"
	"scholar/internal/adapter/retriever"
	"scholar/internal/adapter/store"
	"scholar/internal/adapter/suggest"
	"scholar/internal/domain"
	"scholar/internal/port"
)

// Search modes.
const (
	ModeKeyword  = "keyword"
	ModeSemantic = "semantic"
	ModeHybrid   = "hybrid"
)

// DefaultTopK is the result count when the caller does not choose one.
const DefaultTopK = 10

// SearchOptions tunes ranking and caching.
type SearchOptions struct {
	TopK            int
	Alpha           float64
	ProximityWeight float64
	CoverageWeight  float64
	SeedDocs        int
	Cache           *cache.QueryCache // nil disables caching
}

// SearchEngine owns query-side state: the retrievers, the autocomplete trie
// and an optional persistent result cache. The trie is built once at
// construction; documents indexed afterwards by another process appear only
// in a fresh engine.
type SearchEngine struct {
	store      *store.IndexStore
	log        *slog.Logger
	retrievers map[string]port.Retriever
	trie       *suggest.Trie
	cache      *cache.QueryCache
	topK       int
}

// NewSearchEngine wires the retrieval stack over the store and builds the
// suggestion trie from the corpus.
func NewSearchEngine(st *store.IndexStore, tok port.Tokenizer, opts SearchOptions, log *slog.Logger) *SearchEngine {
	if log == nil {
		log = slog.Default()
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	kw := retriever.NewKeywordRetriever(st, tok).
		WithBonuses(opts.ProximityWeight, opts.CoverageWeight)
	emb := store.NewEmbeddingMatrix(filepath.Join(st.Dir(), store.EmbeddingsFile), log)
	sem := retriever.NewSemanticRetriever(st, tok, emb, kw).WithSeedDocs(opts.SeedDocs)
	hyb := retriever.NewHybridRetriever(st, kw, sem)
	if opts.Alpha > 0 {
		hyb.WithAlpha(opts.Alpha)
	}

	e := &SearchEngine{
		store: st,
		log:   log,
		retrievers: map[string]port.Retriever{
			ModeKeyword:  kw,
			ModeSemantic: sem,
			ModeHybrid:   hyb,
		},
		cache: opts.Cache,
		topK:  topK,
	}
	e.trie = buildTrie(st, tok)
	log.Debug("search engine ready", "suggest_terms", e.trie.Size())
	return e
}

// Search runs the query in the given mode and returns the top-k results.
// An empty mode means keyword; k <= 0 means the configured default.
func (e *SearchEngine) Search(query, mode string, k int) ([]domain.SearchResult, error) {
	if mode == "" {
		mode = ModeKeyword
	}
	r, ok := e.retrievers[mode]
	if !ok {
		return nil, fmt.Errorf("unknown search mode %q", mode)
	}
	if k <= 0 {
		k = e.topK
	}

	gen := e.store.Stats().Generation
	if e.cache != nil {
		if results, hit := e.cache.Get(query, mode, k, gen); hit {
			e.log.Debug("query cache hit", "mode", mode, "k", k)
			return results, nil
		}
	}

	results, err := r.Search(query, k)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		if err := e.cache.Put(query, mode, k, gen, results); err != nil {
			e.log.Warn("query cache write failed", "error", err)
		}
	}
	return results, nil
}

// Suggest returns up to limit completions for the prefix, most popular
// first.
func (e *SearchEngine) Suggest(prefix string, limit int) []string {
	if limit <= 0 {
		limit = e.topK
	}
	return e.trie.Autocomplete(prefix, limit)
}

// Close releases the query cache, if any.
func (e *SearchEngine) Close() error {
	if e.cache != nil {
		return e.cache.Close()
	}
	return nil
}

// buildTrie fills the suggestion trie with corpus words that are popular
// and actually reachable through the lexicon. Raw words go in so
// completions are readable; membership is checked on the stemmed form.
func buildTrie(st *store.IndexStore, tok port.Tokenizer) *suggest.Trie {
	trie := suggest.NewTrie()
	lex := st.Lexicon()
	for word, weight := range suggest.BuildPopularity(st.Documents()) {
		stems := tok.TokenizeQuery(word)
		if len(stems) == 0 {
			continue
		}
		if _, known := lex.ID(stems[0]); !known {
			continue
		}
		trie.Insert(word, weight)
	}
	return trie
}
