// Package ristretto keeps workflow lookups of the webhook receiver in
// process memory, bounded by a byte budget.
package ristretto

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

var (
	// ErrNoBudget is returned by New when the byte budget is not positive.
	ErrNoBudget = errors.New("cache byte budget must be positive")
	// ErrEmptyKey is returned by Set for an empty key.
	ErrEmptyKey = errors.New("cache key is empty")
	// ErrDropped is returned by Set when the admission policy refused the entry.
	ErrDropped = errors.New("cache entry dropped")
)

// typicalEntryBytes is the size of one cached workflow lookup as JSON.
const typicalEntryBytes = 64

// Cache is a byte-budgeted TTL cache. Cost is the length of the stored value.
type Cache struct {
	store *ristretto.Cache[string, []byte]
}

// New creates a cache holding at most budget bytes of values.
func New(budget int64) (*Cache, error) {
	if budget <= 0 {
		return nil, ErrNoBudget
	}
	store, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		// ristretto wants ten counters per entry it expects to hold.
		NumCounters: max(budget/typicalEntryBytes*10, 1000),
		MaxCost:     budget,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{store: store}, nil
}

// Get returns the value under key. A miss or expiry reports found == false.
func (c *Cache) Get(_ context.Context, key string) (value []byte, found bool, err error) {
	value, found = c.store.Get(key)
	return value, found, nil
}

// Set stores value under key for ttl. The write is visible to Get once Set
// returns.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	if !c.store.SetWithTTL(key, value, int64(len(value)), ttl) {
		return ErrDropped
	}
	c.store.Wait()
	return nil
}

// Delete evicts key.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.store.Del(key)
	return nil
}

// Close stops the cache's background goroutines.
func (c *Cache) Close() {
	c.store.Close()
}
