// Package kv wraps a Badger database behind a small key-value interface.
// It backs both the read-model cache and the TTL lock manager.
package kv

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// ErrKeyNotFound is returned by Get when the key does not exist
// or its TTL has elapsed.
var ErrKeyNotFound = errors.New("kv: key not found")

// Store wraps a Badger database instance.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a Badger database at the given path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	return &Store{db: db}, nil
}

// OpenInMemory opens an ephemeral in-memory database. Used in tests.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory badger db: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value stored under key, or ErrKeyNotFound.
// Expired entries are indistinguishable from absent ones.
func (s *Store) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrKeyNotFound
			}
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores value under key with no expiry.
func (s *Store) Set(key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

// SetWithTTL stores value under key, expiring after ttl.
// A non-positive ttl stores the entry without expiry.
func (s *Store) SetWithTTL(key string, value []byte, ttl time.Duration) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if ttl <= 0 {
			return txn.Set([]byte(key), value)
		}
		entry := badger.NewEntry([]byte(key), value).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
}

// SetIfAbsent stores value under key only if the key does not already exist,
// expiring after ttl. Returns true if the entry was stored.
//
// The read and write happen in one transaction. Badger's SSI aborts one of
// two racing transactions with ErrConflict, which we report as not-stored,
// so at most one caller ever observes true for a live key.
func (s *Store) SetIfAbsent(key string, value []byte, ttl time.Duration) (bool, error) {
	stored := false
	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		if err == nil {
			return nil // already present
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		entry := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		if err := txn.SetEntry(entry); err != nil {
			return err
		}
		stored = true
		return nil
	})
	if err != nil {
		if errors.Is(err, badger.ErrConflict) {
			return false, nil
		}
		return false, err
	}
	return stored, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// DeletePrefix removes every key starting with prefix.
// Returns the number of keys removed.
func (s *Store) DeletePrefix(prefix string) (int, error) {
	// Collect first, then delete. Iterating and deleting in the same
	// transaction can exceed Badger's transaction size on large prefixes.
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, key := range keys {
		if err := s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(key)
		}); err != nil {
			return 0, fmt.Errorf("delete key %s: %w", key, err)
		}
	}

	return len(keys), nil
}
