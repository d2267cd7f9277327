package cc

import (
	"context"
	"math/rand"
	"time"

	"ccbench/config"
	"ccbench/kv"
)

// TwoPL executes transactions under strict two-phase locking: every key the
// transaction touches is locked before the first read and released after the
// last write. Acquisition is all-or-nothing through the LockManager, so
// there is no deadlock; colliding acquirers back off for a uniformly random
// sleep between attempts.
type TwoPL struct {
	store  kv.Store
	locks  *LockManager
	mutate Mutation

	// Sleep window between failed acquisitions.
	RetryMin time.Duration
	RetryMax time.Duration

	// An optional validation function called inside the critical section,
	// after the locks are taken and before the first read. Only used for
	// testing.
	Validation func(txn *Transaction, locked []string)
}

func NewTwoPL(store kv.Store, mutate Mutation) *TwoPL {
	return &TwoPL{
		store:    store,
		locks:    NewLockManager(),
		mutate:   mutate,
		RetryMin: config.PropLockRetryMinDefault,
		RetryMax: config.PropLockRetryMaxDefault,
	}
}

func (e *TwoPL) Name() string { return config.ModeTwoPL }

// Execute commits unless the store fails or ctx is cancelled. Lock
// contention blocks, it never aborts, so the bool result is false only
// alongside an error.
func (e *TwoPL) Execute(ctx context.Context, txn *Transaction) (bool, error) {
	all := txn.AllKeys()
	if err := e.acquire(ctx, all); err != nil {
		return false, err
	}
	defer e.locks.ReleaseAll(all)

	if e.Validation != nil {
		e.Validation(txn, all)
	}

	if err := loadBuffer(e.store, txn); err != nil {
		return false, err
	}
	applyMutation(txn, e.mutate)
	if err := flushBuffer(e.store, txn); err != nil {
		return false, err
	}
	return true, nil
}

// acquire spins on TryAcquireAll with a uniformly random sleep in
// [RetryMin, RetryMax] between attempts.
func (e *TwoPL) acquire(ctx context.Context, keys []string) error {
	for !e.locks.TryAcquireAll(keys) {
		d := e.RetryMin
		if span := e.RetryMax - e.RetryMin; span > 0 {
			d += time.Duration(rand.Int63n(int64(span)))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
		}
	}
	return nil
}
