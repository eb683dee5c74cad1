package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"scholar/internal/domain"
)

var (
	bucketResults = []byte("results")
	bucketAccess  = []byte("access")
)

// QueryCache persists ranked search results in a bolt database so repeated
// queries skip scoring, across process restarts too. Entries carry the
// index generation they were computed against; a commit bumps the
// generation and silently invalidates every older entry. Oldest-access
// entries are evicted once maxEntries is exceeded.
type QueryCache struct {
	db         *bbolt.DB
	ttl        time.Duration
	maxEntries int
}

type cacheEntry struct {
	Generation uint64                `json:"generation"`
	CreatedAt  int64                 `json:"created_at"`
	Results    []domain.SearchResult `json:"results"`
}

// Open opens (or creates) the cache database at path.
func Open(path string, maxEntries int, ttl time.Duration) (*QueryCache, error) {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open query cache: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketResults, bucketAccess} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init query cache: %w", err)
	}
	return &QueryCache{db: db, ttl: ttl, maxEntries: maxEntries}, nil
}

// Close closes the underlying database.
func (c *QueryCache) Close() error {
	return c.db.Close()
}

func cacheKey(query, mode string, topK int) []byte {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", query, mode, topK)))
	return []byte(hex.EncodeToString(h[:16]))
}

// Get returns the cached results for (query, mode, topK) if present, fresh
// and computed against the given index generation.
func (c *QueryCache) Get(query, mode string, topK int, generation uint64) ([]domain.SearchResult, bool) {
	key := cacheKey(query, mode, topK)
	var entry cacheEntry
	found := false

	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketResults).Get(key)
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &entry); err != nil {
			return nil
		}
		found = true
		return nil
	})
	if err != nil || !found {
		return nil, false
	}

	if entry.Generation != generation || time.Since(time.Unix(entry.CreatedAt, 0)) > c.ttl {
		c.delete(key)
		return nil, false
	}

	c.touch(key)
	return entry.Results, true
}

// Put stores the results for (query, mode, topK) under the given index
// generation, evicting the least recently used entry when full.
func (c *QueryCache) Put(query, mode string, topK int, generation uint64, results []domain.SearchResult) error {
	key := cacheKey(query, mode, topK)
	entry := cacheEntry{
		Generation: generation,
		CreatedAt:  time.Now().Unix(),
		Results:    results,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return c.db.Update(func(tx *bbolt.Tx) error {
		results := tx.Bucket(bucketResults)
		access := tx.Bucket(bucketAccess)

		if results.Get(key) == nil && results.Stats().KeyN >= c.maxEntries {
			if err := evictOldest(results, access); err != nil {
				return err
			}
		}
		if err := results.Put(key, data); err != nil {
			return err
		}
		return access.Put(key, nowBytes())
	})
}

// Size returns the number of cached entries.
func (c *QueryCache) Size() int {
	n := 0
	c.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketResults).Stats().KeyN
		return nil
	})
	return n
}

// Purge drops every cached entry.
func (c *QueryCache) Purge() error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketResults, bucketAccess} {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *QueryCache) delete(key []byte) {
	c.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketResults).Delete(key); err != nil {
			return err
		}
		return tx.Bucket(bucketAccess).Delete(key)
	})
}

func (c *QueryCache) touch(key []byte) {
	c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketAccess).Put(key, nowBytes())
	})
}

// evictOldest removes the entry with the smallest access timestamp.
func evictOldest(results, access *bbolt.Bucket) error {
	var oldestKey []byte
	var oldestTime []byte
	err := access.ForEach(func(k, v []byte) error {
		if oldestTime == nil || string(v) < string(oldestTime) {
			oldestKey = append([]byte(nil), k...)
			oldestTime = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil || oldestKey == nil {
		return err
	}
	if err := results.Delete(oldestKey); err != nil {
		return err
	}
	return access.Delete(oldestKey)
}

func nowBytes() []byte {
	return []byte(fmt.Sprintf("%020d", time.Now().UnixNano()))
}
