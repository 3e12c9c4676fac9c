// Package cache provides a JSON read-model cache on top of the key-value store.
//
// The cache is strictly an availability layer: every entry can be rebuilt
// from the catalog database, so any failure to read or decode is treated
// as a miss and never surfaces to callers as an error.
package cache

import (
	"encoding/json/v2"
	"log/slog"
	"time"

	"github.com/bookhaven/bookhaven-server/internal/kv"
)

// Cache key layout. Every cached read model lives under one of these
// prefixes so invalidation can sweep a whole family at once.
const (
	BookDetailPrefix   = "books:detail:"
	BookListPrefix     = "books:list:"
	AuthorDetailPrefix = "authors:detail:"
	AuthorListKey      = "authors:list"
	UserBorrowedPrefix = "users:borrowed:"
)

// BookDetailKey returns the cache key for a single book read model.
func BookDetailKey(bookID string) string {
	return BookDetailPrefix + bookID
}

// AuthorDetailKey returns the cache key for a single author read model.
func AuthorDetailKey(authorID string) string {
	return AuthorDetailPrefix + authorID
}

// UserBorrowedKey returns the cache key for a user's open borrow list.
func UserBorrowedKey(userID string) string {
	return UserBorrowedPrefix + userID
}

// Cache stores JSON-encoded read models with a default TTL.
type Cache struct {
	kv         *kv.Store
	defaultTTL time.Duration
	logger     *slog.Logger
}

// New creates a cache over the given key-value store.
func New(store *kv.Store, defaultTTL time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		kv:         store,
		defaultTTL: defaultTTL,
		logger:     logger,
	}
}

// Get loads the entry under key into dest and reports whether it was found.
// Decode failures count as misses; the stale entry is dropped so the next
// writer starts clean.
func (c *Cache) Get(key string, dest any) bool {
	data, err := c.kv.Get(key)
	if err != nil {
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		if c.logger != nil {
			c.logger.Warn("dropping undecodable cache entry", "key", key, "error", err)
		}
		_ = c.kv.Delete(key)
		return false
	}

	return true
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetTTL(key, value, c.defaultTTL)
}

// SetTTL stores value under key with an explicit TTL.
// Failures are logged and swallowed; a missed write only costs a rebuild.
func (c *Cache) SetTTL(key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("failed to encode cache entry", "key", key, "error", err)
		}
		return
	}

	if err := c.kv.SetWithTTL(key, data, ttl); err != nil {
		if c.logger != nil {
			c.logger.Warn("failed to write cache entry", "key", key, "error", err)
		}
	}
}

// Delete removes a single entry.
func (c *Cache) Delete(key string) {
	if err := c.kv.Delete(key); err != nil && c.logger != nil {
		c.logger.Warn("failed to delete cache entry", "key", key, "error", err)
	}
}

// DeletePrefix removes every entry under prefix and returns how many went.
func (c *Cache) DeletePrefix(prefix string) int {
	deleted, err := c.kv.DeletePrefix(prefix)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("failed to sweep cache prefix", "prefix", prefix, "error", err)
		}
		return 0
	}
	return deleted
}
