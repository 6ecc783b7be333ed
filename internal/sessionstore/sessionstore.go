// Package sessionstore is the TTL key-value adapter for session tokens,
// backed by an embedded BadgerDB. Entries carry their expiry natively,
// so expired tokens vanish without any sweeper in this package.
package sessionstore

import (
	"context"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

const keyPrefix = "session/"

// Store wraps the Badger database holding token -> account mappings.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the session database at dir.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("session db dir is required")
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put stores key -> accountID with the given TTL.
func (s *Store) Put(ctx context.Context, key, accountID string, ttl time.Duration) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("session store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("session key is required")
	}
	if accountID == "" {
		return fmt.Errorf("account id is required")
	}
	if ttl <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}

	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(storageKey(key), []byte(accountID)).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
}

// Get returns the account id mapped to key. The second return value is
// false when the key is absent or expired.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if s == nil || s.db == nil {
		return "", false, fmt.Errorf("session store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if key == "" {
		return "", false, nil
	}

	var accountID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(storageKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			accountID = string(val)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return accountID, true, nil
}

// Delete removes key. Returns false when the key was not present.
func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	if s == nil || s.db == nil {
		return false, fmt.Errorf("session store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if key == "" {
		return false, nil
	}

	found := false
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(storageKey(key)); err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		found = true
		return txn.Delete(storageKey(key))
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func storageKey(key string) []byte {
	return []byte(keyPrefix + key)
}
