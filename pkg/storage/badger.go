package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/mkarras/chess-analysis/pkg/core"
)

// reportPrefix namespaces report keys within the badger keyspace.
var reportPrefix = []byte("report/")

// BadgerStore implements Store on an embedded badger database, for
// deployments that want report blobs without a relational schema.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore wraps an already-open badger database. The caller owns
// the database lifecycle.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// OpenBadgerStore opens (or creates) a badger database at dir.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func key(gameID string) []byte {
	return append(append([]byte(nil), reportPrefix...), gameID...)
}

func (s *BadgerStore) Set(_ context.Context, gameID string, report *core.AnalysisReport) error {
	doc, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(gameID), doc)
	})
}

func (s *BadgerStore) Get(_ context.Context, gameID string) (*core.AnalysisReport, error) {
	var report core.AnalysisReport
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(gameID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &report)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *BadgerStore) Has(_ context.Context, gameID string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key(gameID))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *BadgerStore) Delete(_ context.Context, gameID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(gameID))
	})
}

func (s *BadgerStore) List(_ context.Context) ([]string, error) {
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = reportPrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			ids = append(ids, string(it.Item().Key()[len(reportPrefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}
