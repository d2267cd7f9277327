package cc

import (
	"time"

	"ccbench/kv"
)

// Transaction is one logical unit of work: read every key in ReadSet, apply
// the write transformation to every key in WriteSet, commit. The key sets
// are fixed at creation and may overlap. A transaction that aborts is
// resubmitted as the same logical transaction, so CreatedAt (and with it the
// response time) spans all attempts.
type Transaction struct {
	ID       string
	ReadSet  []string
	WriteSet []string

	// Timestamps assigned by the optimistic executor, one per attempt.
	StartTS  uint64
	CommitTS uint64

	// Per-attempt value slots, populated during the read phase. Never
	// carries state across attempts.
	buffer map[string]kv.Record

	CreatedAt   time.Time
	CompletedAt time.Time
}

func NewTransaction(id string, readSet, writeSet []string) *Transaction {
	return &Transaction{
		ID:        id,
		ReadSet:   readSet,
		WriteSet:  writeSet,
		buffer:    make(map[string]kv.Record, len(readSet)+len(writeSet)),
		CreatedAt: time.Now(),
	}
}

// AllKeys returns ReadSet union WriteSet, deduplicated, in first-occurrence
// order.
func (t *Transaction) AllKeys() []string {
	keys := make([]string, 0, len(t.ReadSet)+len(t.WriteSet))
	seen := make(map[string]struct{}, len(t.ReadSet)+len(t.WriteSet))
	for _, set := range [][]string{t.ReadSet, t.WriteSet} {
		for _, key := range set {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	return keys
}

// ResetBuffer prepares the transaction for another attempt: value slots and
// timestamps are dropped, identity and CreatedAt stay.
func (t *Transaction) ResetBuffer() {
	t.buffer = make(map[string]kv.Record, len(t.ReadSet)+len(t.WriteSet))
	t.StartTS = 0
	t.CommitTS = 0
}

// Complete stamps the commit wall time.
func (t *Transaction) Complete() {
	t.CompletedAt = time.Now()
}

// ResponseTime is the wall time from creation to commit, including every
// aborted attempt. Zero until Complete is called.
func (t *Transaction) ResponseTime() time.Duration {
	if t.CompletedAt.IsZero() {
		return 0
	}
	return t.CompletedAt.Sub(t.CreatedAt)
}
