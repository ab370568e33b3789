package transfer

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/ledger-reconcile/internal/model"
)

// cacheEntry holds one cached suggestion list.
type cacheEntry struct {
	expiry      time.Time
	suggestions []model.TransferSuggestion
}

// Cache memoizes suggestion runs per (batch, config) key. The clock is
// injectable so TTL behavior is deterministic under test.
type Cache struct {
	now     func() time.Time
	entries map[string]cacheEntry
	ttl     time.Duration
	mu      sync.RWMutex
}

// NewCache creates a cache with the given TTL. A nil clock uses time.Now.
func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     now,
	}
}

// Get retrieves a cached result if present and unexpired.
func (c *Cache) Get(key string) ([]model.TransferSuggestion, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || c.now().After(entry.expiry) {
		return nil, false
	}
	return entry.suggestions, true
}

// Set stores a result and sweeps expired entries.
func (c *Cache) Set(key string, suggestions []model.TransferSuggestion) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, entry := range c.entries {
		if now.After(entry.expiry) {
			delete(c.entries, k)
		}
	}

	c.entries[key] = cacheEntry{
		suggestions: suggestions,
		expiry:      now.Add(c.ttl),
	}
}

// CacheKey fingerprints a batch and the config that will process it. Row
// order does not affect the key.
func CacheKey(batch []model.ImportedTransaction, config Config) string {
	ids := make([]string, 0, len(batch))
	for _, txn := range batch {
		ids = append(ids, txn.ID)
	}
	sort.Strings(ids)

	data := fmt.Sprintf("%s|%d|%.4f|%d",
		strings.Join(ids, ","),
		config.MaxDaysApart,
		config.MinScore,
		config.MaxSuggestions)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(data)))
}
