package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"scholar/internal/domain"
)

// Shard holds one barrel's postings: term ID → doc ID → posting.
type Shard map[int]map[string]*domain.Posting

// BarrelStore manages the on-disk shards of the inverted index, partitioned
// by a term's leading character (a..z, or # for everything else). Shards are
// loaded lazily, cached for the process lifetime and flushed only when dirty,
// which bounds commit I/O to the working set.
type BarrelStore struct {
	dir    string
	log    *slog.Logger
	shards map[string]Shard
	dirty  map[string]bool
}

// ShardKeys lists all 27 possible shard keys.
var ShardKeys = func() []string {
	keys := make([]string, 0, 27)
	for c := 'a'; c <= 'z'; c++ {
		keys = append(keys, string(c))
	}
	return append(keys, "#")
}()

// NewBarrelStore creates a barrel store rooted at dir.
func NewBarrelStore(dir string, log *slog.Logger) *BarrelStore {
	if log == nil {
		log = slog.Default()
	}
	return &BarrelStore{
		dir:    dir,
		log:    log,
		shards: make(map[string]Shard),
		dirty:  make(map[string]bool),
	}
}

// ShardKey returns the shard key for a term: its lowercased first character
// if in a..z, otherwise "#".
func ShardKey(term string) string {
	if term == "" {
		return "#"
	}
	c := strings.ToLower(term[:1])[0]
	if c >= 'a' && c <= 'z' {
		return string(c)
	}
	return "#"
}

func (b *BarrelStore) shardPath(key string) string {
	return filepath.Join(b.dir, key+".json")
}

// Get returns the shard for key, loading it from disk on first access.
// A missing or unreadable shard is treated as empty: a warning is logged and
// indexing proceeds, with consistency restored by a later rebuild.
func (b *BarrelStore) Get(key string) Shard {
	if shard, ok := b.shards[key]; ok {
		return shard
	}

	shard := make(Shard)
	var wire map[string]map[string]domain.Posting
	found, err := readJSONFile(b.shardPath(key), &wire)
	if err != nil {
		b.log.Warn("barrel shard unreadable, treating as empty", "shard", key, "error", err)
	} else if found {
		for idStr, docs := range wire {
			id, convErr := strconv.Atoi(idStr)
			if convErr != nil {
				b.log.Warn("barrel shard has non-numeric term id, dropping entry", "shard", key, "term_id", idStr)
				continue
			}
			entries := make(map[string]*domain.Posting, len(docs))
			for docID, p := range docs {
				posting := p
				entries[docID] = &posting
			}
			shard[id] = entries
		}
	}

	b.shards[key] = shard
	return shard
}

// Put records a posting for (term, doc) in the term's shard and marks the
// shard dirty.
func (b *BarrelStore) Put(term string, termID int, docID string, p *domain.Posting) {
	key := ShardKey(term)
	shard := b.Get(key)
	docs, ok := shard[termID]
	if !ok {
		docs = make(map[string]*domain.Posting)
		shard[termID] = docs
	}
	docs[docID] = p
	b.dirty[key] = true
}

// DirtyCount returns the number of shards modified since the last flush.
func (b *BarrelStore) DirtyCount() int {
	return len(b.dirty)
}

// FlushDirty writes every dirty shard to disk atomically. Clean shards are
// not touched.
func (b *BarrelStore) FlushDirty() error {
	for key := range b.dirty {
		if err := b.writeShard(key, b.shards[key]); err != nil {
			return err
		}
		delete(b.dirty, key)
	}
	return nil
}

func (b *BarrelStore) writeShard(key string, shard Shard) error {
	wire := make(map[string]map[string]*domain.Posting, len(shard))
	for id, docs := range shard {
		wire[strconv.Itoa(id)] = docs
	}
	if err := writeJSONAtomic(b.shardPath(key), wire); err != nil {
		return fmt.Errorf("flush barrel %s: %w", key, err)
	}
	return nil
}

// RebuildFrom drops all shard files and rewrites them from the forward
// index, the source of truth. This reconciles barrels left stale by
// deferred remove maintenance.
func (b *BarrelStore) RebuildFrom(forward map[string]map[int]*domain.Posting, lex *Lexicon) error {
	shards := make(map[string]Shard)
	for docID, terms := range forward {
		for termID, posting := range terms {
			term, ok := lex.TermOf(termID)
			if !ok {
				b.log.Warn("forward index references unknown term id", "term_id", termID, "doc_id", docID)
				continue
			}
			key := ShardKey(term)
			shard, ok := shards[key]
			if !ok {
				shard = make(Shard)
				shards[key] = shard
			}
			docs, ok := shard[termID]
			if !ok {
				docs = make(map[string]*domain.Posting)
				shard[termID] = docs
			}
			docs[docID] = posting
		}
	}

	for _, key := range ShardKeys {
		shard, ok := shards[key]
		if !ok {
			// Shard no longer has content; remove any stale file.
			if err := os.Remove(b.shardPath(key)); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("remove stale barrel %s: %w", key, err)
			}
			continue
		}
		if err := b.writeShard(key, shard); err != nil {
			return err
		}
	}

	b.shards = shards
	b.dirty = make(map[string]bool)
	return nil
}

// Unload drops all cached shards. The next access reloads from disk.
// Unflushed dirty state is discarded.
func (b *BarrelStore) Unload() {
	b.shards = make(map[string]Shard)
	b.dirty = make(map[string]bool)
}
