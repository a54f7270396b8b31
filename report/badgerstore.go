package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const keyPrefix = "report:"

// BadgerStore keeps reports in BadgerDB under "report:<id>" keys. UUIDv7 ids
// make key order chronological.
type BadgerStore struct {
	db    *badger.DB
	owned bool
}

// NewBadgerStore wraps an open database. Close does not close db.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// OpenBadgerStore opens (or creates) a database in dir.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, fmt.Errorf("open report store %s: %w", dir, err)
	}
	return &BadgerStore{db: db, owned: true}, nil
}

func key(id string) []byte {
	return []byte(keyPrefix + id)
}

func (s *BadgerStore) Save(_ context.Context, r Report) error {
	if err := validID(r.ID); err != nil {
		return err
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, r.ID, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(r.ID), data)
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, r.ID, err)
	}
	return nil
}

func (s *BadgerStore) Load(_ context.Context, id string) (Report, error) {
	if err := validID(id); err != nil {
		return Report{}, err
	}

	var r Report
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &r)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Report{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Report{}, fmt.Errorf("%w: %s: %v", ErrLoadFailed, id, err)
	}
	return r, nil
}

func (s *BadgerStore) List(_ context.Context) ([]string, error) {
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(keyPrefix)
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			ids = append(ids, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	return ids, nil
}

func (s *BadgerStore) Delete(_ context.Context, ids ...string) error {
	for _, id := range ids {
		if err := validID(id); err != nil {
			return err
		}
	}
	return s.db.Update(func(txn *badger.Txn) error {
		for _, id := range ids {
			if err := txn.Delete(key(id)); err != nil {
				return fmt.Errorf("delete failed: %s: %w", id, err)
			}
		}
		return nil
	})
}

// Close closes the database when the store opened it.
func (s *BadgerStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
