package cache

import (
	"path/filepath"
	"testing"
	"time"

	"scholar/internal/domain"
)

func openTestCache(t *testing.T, maxEntries int, ttl time.Duration) *QueryCache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"), maxEntries, ttl)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func sampleResults() []domain.SearchResult {
	return []domain.SearchResult{
		{DocID: "doc1", Score: 1.5, Title: "one"},
		{DocID: "doc2", Score: 0.5, Title: "two"},
	}
}

func TestCacheRoundtrip(t *testing.T) {
	c := openTestCache(t, 10, time.Minute)

	if _, hit := c.Get("query", "keyword", 5, 1); hit {
		t.Fatal("hit on empty cache")
	}

	want := sampleResults()
	if err := c.Put("query", "keyword", 5, 1, want); err != nil {
		t.Fatal(err)
	}

	got, hit := c.Get("query", "keyword", 5, 1)
	if !hit {
		t.Fatal("expected hit")
	}
	if len(got) != 2 || got[0].DocID != "doc1" || got[0].Score != 1.5 {
		t.Fatalf("cached results drifted: %v", got)
	}

	// Mode and k are part of the key.
	if _, hit := c.Get("query", "hybrid", 5, 1); hit {
		t.Error("mode not in key")
	}
	if _, hit := c.Get("query", "keyword", 7, 1); hit {
		t.Error("top-k not in key")
	}
}

func TestCacheGenerationInvalidation(t *testing.T) {
	c := openTestCache(t, 10, time.Minute)
	if err := c.Put("query", "keyword", 5, 1, sampleResults()); err != nil {
		t.Fatal(err)
	}

	// A commit bumps the index generation; stale entries must miss.
	if _, hit := c.Get("query", "keyword", 5, 2); hit {
		t.Fatal("stale generation served")
	}
	// The stale entry is dropped, not kept around.
	if c.Size() != 0 {
		t.Errorf("stale entry retained, size = %d", c.Size())
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	c := openTestCache(t, 10, time.Nanosecond)
	if err := c.Put("query", "keyword", 5, 1, sampleResults()); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, hit := c.Get("query", "keyword", 5, 1); hit {
		t.Fatal("expired entry served")
	}
}

func TestCacheEviction(t *testing.T) {
	c := openTestCache(t, 2, time.Minute)
	queries := []string{"first", "second", "third"}
	for _, q := range queries {
		if err := c.Put(q, "keyword", 5, 1, sampleResults()); err != nil {
			t.Fatal(err)
		}
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d, want 2", c.Size())
	}
}

func TestCachePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(path, 10, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Put("query", "keyword", 5, 1, sampleResults()); err != nil {
		t.Fatal(err)
	}
	c.Close()

	c2, err := Open(path, 10, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	defer c2.Close()
	if _, hit := c2.Get("query", "keyword", 5, 1); !hit {
		t.Fatal("entry lost across reopen")
	}
}

func TestCachePurge(t *testing.T) {
	c := openTestCache(t, 10, time.Minute)
	if err := c.Put("query", "keyword", 5, 1, sampleResults()); err != nil {
		t.Fatal(err)
	}
	if err := c.Purge(); err != nil {
		t.Fatal(err)
	}
	if c.Size() != 0 {
		t.Fatalf("size after purge = %d", c.Size())
	}
}
