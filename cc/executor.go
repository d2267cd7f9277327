// Package cc implements the two concurrency control protocols under
// measurement: strict two-phase locking and optimistic concurrency control
// with backward validation. Both executors run the same transaction shape
// (read ReadSet, transform WriteSet, write back) and differ only in how they
// serialize conflicting transactions.
package cc

import (
	"context"

	"github.com/pingcap/errors"

	"ccbench/kv"
)

// Executor runs one attempt of a transaction against the store.
//
// The bool result reports whether the attempt committed. A clean concurrency
// abort is (false, nil) and the caller is expected to retry; an error means
// the store or the run itself failed and no retry will help. The two-phase
// locking executor never aborts on contention, it blocks instead.
type Executor interface {
	Execute(ctx context.Context, txn *Transaction) (bool, error)
	Name() string
}

// Mutation transforms the buffered record of one write key. The input is the
// current record (nil when the key does not exist yet); the returned record
// is what gets written. Mutations run on a private copy and may modify it in
// place.
type Mutation func(rec kv.Record) kv.Record

// IncrementField returns the standard benchmark transformation: add 1 to the
// named integer field, treating a missing record or field as 0.
func IncrementField(field string) Mutation {
	return func(rec kv.Record) kv.Record {
		if rec == nil {
			rec = make(kv.Record, 1)
		}
		rec.SetInt(field, rec.GetInt(field)+1)
		return rec
	}
}

// loadBuffer runs the read phase: every read key and every write key not
// already buffered is fetched into the transaction's buffer. Write keys are
// fetched too because the transformation is a read-modify-write.
func loadBuffer(store kv.Store, txn *Transaction) error {
	for _, key := range txn.ReadSet {
		rec, err := store.Get(key)
		if err != nil {
			return errors.Annotatef(err, "read %s", key)
		}
		txn.buffer[key] = rec
	}
	for _, key := range txn.WriteSet {
		if _, ok := txn.buffer[key]; ok {
			continue
		}
		rec, err := store.Get(key)
		if err != nil {
			return errors.Annotatef(err, "read %s", key)
		}
		txn.buffer[key] = rec
	}
	return nil
}

// applyMutation transforms the buffered record of every write key.
func applyMutation(txn *Transaction, mutate Mutation) {
	for _, key := range txn.WriteSet {
		txn.buffer[key] = mutate(txn.buffer[key].Clone())
	}
}

// flushBuffer writes every write key's buffered record to the store.
func flushBuffer(store kv.Store, txn *Transaction) error {
	for _, key := range txn.WriteSet {
		if err := store.Put(key, txn.buffer[key]); err != nil {
			return errors.Annotatef(err, "write %s", key)
		}
	}
	return nil
}
