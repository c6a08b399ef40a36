// Package cache memoizes parsed book documents so that reopening a book
// does not re-read its file.
package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/unalkalkan/bookreader/pkg/types"
)

// keySeparator cannot appear in a file path
const keySeparator = "\x00"

// BuildKey derives the cache key for a file path and format
func BuildKey(path string, format types.Format) string {
	return path + keySeparator + string(format)
}

// Cache stores parsed documents by key. All methods are safe for concurrent
// use; there is no atomic check-then-populate across calls.
type Cache interface {
	Get(key string) (*types.Document, bool)
	Put(key string, doc *types.Document)
	Remove(key string)
	Clear()
	Len() int
}

// MemoryCache is an unbounded map guarded by a RWMutex. Entries live until
// removed or cleared.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*types.Document
}

// New creates an unbounded in-memory cache
func New() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]*types.Document),
	}
}

// Get returns the document stored under key
func (c *MemoryCache) Get(key string) (*types.Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.entries[key]
	return doc, ok
}

// Put inserts or replaces the document stored under key
func (c *MemoryCache) Put(key string, doc *types.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = doc
}

// Remove deletes the entry for key if present
func (c *MemoryCache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear deletes every entry
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*types.Document)
}

// Len returns the number of entries
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// BoundedCache keeps at most a fixed number of documents, evicting the least
// recently used one when full.
type BoundedCache struct {
	lru *lru.Cache[string, *types.Document]
}

// NewBounded creates a cache holding at most size documents. A size below 1
// yields an unbounded cache.
func NewBounded(size int) Cache {
	if size < 1 {
		return New()
	}
	l, err := lru.New[string, *types.Document](size)
	if err != nil {
		// lru.New only fails on a non-positive size
		return New()
	}
	return &BoundedCache{lru: l}
}

// Get returns the document stored under key and marks it recently used
func (c *BoundedCache) Get(key string) (*types.Document, bool) {
	return c.lru.Get(key)
}

// Put inserts or replaces the document stored under key
func (c *BoundedCache) Put(key string, doc *types.Document) {
	c.lru.Add(key, doc)
}

// Remove deletes the entry for key if present
func (c *BoundedCache) Remove(key string) {
	c.lru.Remove(key)
}

// Clear deletes every entry
func (c *BoundedCache) Clear() {
	c.lru.Purge()
}

// Len returns the number of entries
func (c *BoundedCache) Len() int {
	return c.lru.Len()
}
