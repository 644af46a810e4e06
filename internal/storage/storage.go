// Package storage provides a persistent, BadgerDB-backed key-value store.
// Its one consumer is internal/tablebase's PersistentCache, which keys
// entries by Zobrist hash so repeated tablebase probes across engine
// restarts (e.g. re-analyzing the same endgame set) skip the filesystem
// prober.
package storage

import (
	"encoding/binary"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/veyronchess/enginecore/internal/xlog"
)

const probeEntryTTL = 30 * 24 * time.Hour

// Store wraps a BadgerDB instance opened in the engine's data directory.
type Store struct {
	db *badger.DB
}

// Open opens (creating if needed) the persistent store under the platform
// data directory.
func Open() (*Store, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return OpenAt(dbDir)
}

// OpenAt opens the store at an explicit directory, primarily for tests.
func OpenAt(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// PutProbeResult stores a tablebase probe outcome keyed by Zobrist hash,
// with a TTL so stale entries age out rather than accumulating forever.
func (s *Store) PutProbeResult(hash uint64, wdl int8, dtz int16) error {
	key := probeKey(hash)
	val := make([]byte, 3)
	val[0] = byte(wdl)
	binary.LittleEndian.PutUint16(val[1:], uint16(dtz))

	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key, val).WithTTL(probeEntryTTL)
		return txn.SetEntry(e)
	})
}

// GetProbeResult retrieves a previously cached probe outcome.
func (s *Store) GetProbeResult(hash uint64) (wdl int8, dtz int16, found bool) {
	key := probeKey(hash)

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 3 {
				return nil
			}
			wdl = int8(val[0])
			dtz = int16(binary.LittleEndian.Uint16(val[1:]))
			found = true
			return nil
		})
	})
	if err != nil {
		xlog.Engine.Warningf("probe cache read failed: %v", err)
	}
	return wdl, dtz, found
}

func probeKey(hash uint64) []byte {
	key := make([]byte, 9)
	key[0] = 'p'
	binary.LittleEndian.PutUint64(key[1:], hash)
	return key
}
