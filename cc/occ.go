package cc

import (
	"context"
	"sync"

	"ccbench/config"
	"ccbench/kv"
)

// commitRecord is what validation needs to remember about a committed
// transaction: when it committed and what it wrote.
type commitRecord struct {
	commitTS uint64
	writeSet []string
}

// OCC executes transactions optimistically. Reads run without any
// synchronization against other transactions; at commit time the transaction
// is validated under a single serialization mutex against every transaction
// that committed after it started (backward validation). A conflict aborts
// the attempt cleanly, writes happen only after validation passes.
//
// Timestamps come from one monotonic counter, a fresh value per assignment,
// so commit order equals validation order and no two transactions share a
// timestamp. The counter mutex is always taken after the validation mutex,
// never the other way around.
type OCC struct {
	store  kv.Store
	mutate Mutation

	tsMu   sync.Mutex
	ts     uint64
	active map[uint64]struct{} // start timestamps of in-flight transactions

	validMu   sync.Mutex
	committed []commitRecord // ascending commitTS

	// RetainHistory keeps every commit record instead of pruning the ones
	// no in-flight transaction can conflict with.
	RetainHistory bool

	// An optional validation function called after the read phase, right
	// before the serialization mutex is taken. Only used for testing.
	Validation func(txn *Transaction)
}

func NewOCC(store kv.Store, mutate Mutation) *OCC {
	return &OCC{
		store:  store,
		mutate: mutate,
		active: make(map[uint64]struct{}),
	}
}

func (o *OCC) Name() string { return config.ModeOCC }

// Execute runs one optimistic attempt. A validation conflict returns
// (false, nil): nothing was written and the caller retries with a fresh
// start timestamp.
func (o *OCC) Execute(ctx context.Context, txn *Transaction) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	o.begin(txn)
	defer o.finish(txn)

	// Read phase, unsynchronized: a concurrent commit between two reads is
	// caught by validation, not prevented here.
	if err := loadBuffer(o.store, txn); err != nil {
		return false, err
	}
	applyMutation(txn, o.mutate)

	if o.Validation != nil {
		o.Validation(txn)
	}

	o.validMu.Lock()
	defer o.validMu.Unlock()

	if o.conflicts(txn) {
		return false, nil
	}
	if err := flushBuffer(o.store, txn); err != nil {
		return false, err
	}
	txn.CommitTS = o.nextTS()
	o.committed = append(o.committed, commitRecord{
		commitTS: txn.CommitTS,
		writeSet: append([]string(nil), txn.WriteSet...),
	})
	if !o.RetainHistory {
		o.prune()
	}
	return true, nil
}

// conflicts reports whether any transaction that committed after txn started
// wrote a key txn read. committed is ordered by commitTS, so the scan walks
// backwards and stops at the first entry at or before txn's start.
func (o *OCC) conflicts(txn *Transaction) bool {
	for i := len(o.committed) - 1; i >= 0; i-- {
		c := o.committed[i]
		if c.commitTS <= txn.StartTS {
			break
		}
		if intersects(c.writeSet, txn.ReadSet) {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func (o *OCC) begin(txn *Transaction) {
	o.tsMu.Lock()
	defer o.tsMu.Unlock()
	o.ts++
	txn.StartTS = o.ts
	o.active[txn.StartTS] = struct{}{}
}

func (o *OCC) finish(txn *Transaction) {
	o.tsMu.Lock()
	defer o.tsMu.Unlock()
	delete(o.active, txn.StartTS)
}

func (o *OCC) nextTS() uint64 {
	o.tsMu.Lock()
	defer o.tsMu.Unlock()
	o.ts++
	return o.ts
}

// prune drops commit records no current or future transaction can conflict
// with. An entry matters only to validators with StartTS < commitTS; future
// transactions always start after the current counter value, so an entry
// with commitTS at or below every in-flight start is dead. Called with
// validMu held. Abort decisions are identical with and without pruning.
func (o *OCC) prune() {
	o.tsMu.Lock()
	minStart := o.ts + 1
	for start := range o.active {
		if start < minStart {
			minStart = start
		}
	}
	o.tsMu.Unlock()

	cut := 0
	for cut < len(o.committed) && o.committed[cut].commitTS <= minStart {
		cut++
	}
	if cut > 0 {
		o.committed = append([]commitRecord(nil), o.committed[cut:]...)
	}
}

// HistoryLen reports the number of retained commit records.
func (o *OCC) HistoryLen() int {
	o.validMu.Lock()
	defer o.validMu.Unlock()
	return len(o.committed)
}
