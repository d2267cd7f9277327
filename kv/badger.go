package kv

import (
	"os"

	"github.com/dgraph-io/badger"
	"github.com/dgraph-io/badger/options"
	"github.com/ngaut/log"
	"github.com/pingcap/errors"

	"ccbench/config"
)

// BadgerStore is the durable Store, one record per key. Thread safety comes
// from badger itself.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a badger instance under conf.DBPath.
func NewBadgerStore(conf *config.Engine) (*BadgerStore, error) {
	db, err := badger.Open(getOptions(conf))
	if err != nil {
		return nil, errors.Annotatef(err, "open badger at %s", conf.DBPath)
	}
	log.Infof("badger store opened at %s", conf.DBPath)
	return &BadgerStore{db: db}, nil
}

// DestroyBadger removes the data and value log directories. Used by the
// loader when a fresh store is requested.
func DestroyBadger(conf *config.Engine) error {
	if err := os.RemoveAll(conf.DBPath); err != nil {
		return errors.Trace(err)
	}
	if conf.VlogPath != "" {
		if err := os.RemoveAll(conf.VlogPath); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func getOptions(conf *config.Engine) badger.Options {
	opts := badger.DefaultOptions(conf.DBPath)
	if conf.VlogPath != "" {
		opts.ValueDir = conf.VlogPath
	}
	opts.SyncWrites = conf.SyncWrites
	if conf.ValueThreshold > 0 {
		opts.ValueThreshold = conf.ValueThreshold
	}
	if conf.MaxTableSize > 0 {
		opts.MaxTableSize = conf.MaxTableSize
	}
	if conf.NumMemTables > 0 {
		opts.NumMemtables = conf.NumMemTables
	}
	if conf.NumL0Tables > 0 {
		opts.NumLevelZeroTables = conf.NumL0Tables
	}
	if conf.NumL0Stall > 0 {
		opts.NumLevelZeroTablesStall = conf.NumL0Stall
	}
	if conf.VlogFileSize > 0 {
		opts.ValueLogFileSize = conf.VlogFileSize
	}
	if conf.NumCompactors > 0 {
		opts.NumCompactors = conf.NumCompactors
	}
	opts.TableLoadingMode = loadingMode(conf.TableLoadingMode, options.LoadToRAM)
	opts.ValueLogLoadingMode = loadingMode(conf.ValueLogLoadingMode, options.MemoryMap)
	return opts
}

func loadingMode(name string, def options.FileLoadingMode) options.FileLoadingMode {
	switch name {
	case "FileIO":
		return options.FileIO
	case "LoadToRAM":
		return options.LoadToRAM
	case "MemoryMap":
		return options.MemoryMap
	default:
		return def
	}
}

func (s *BadgerStore) Get(key string) (Record, error) {
	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		rec, err = DecodeRecord(val)
		return err
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return rec, nil
}

func (s *BadgerStore) Put(key string, rec Record) error {
	buf, err := EncodeRecord(rec, nil)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), buf)
	})
	return errors.Trace(err)
}

func (s *BadgerStore) Delete(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	return errors.Trace(err)
}

func (s *BadgerStore) Close() error {
	return errors.Trace(s.db.Close())
}
