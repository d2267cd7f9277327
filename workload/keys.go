// Package workload drives transactions against an executor: it seeds the
// store, picks keys following a hotspot distribution and runs the
// multi-threaded benchmark loop.
package workload

import (
	"fmt"
	"math/rand"
)

// KeyChooser picks the read key and write key for one transaction. A single
// coin flip decides whether the transaction is hot: with probability
// hotOpnFraction both keys are drawn from the first hotsetSize keys,
// otherwise both are drawn from the whole keyspace.
type KeyChooser struct {
	prefix         string
	hotsetSize     int
	keyspaceSize   int
	hotOpnFraction float64
}

// NewKeyChooser creates a KeyChooser over keyspaceSize keys whose hot set is
// the first hotsetSize of them.
func NewKeyChooser(prefix string, hotsetSize, keyspaceSize int, hotOpnFraction float64) *KeyChooser {
	if hotOpnFraction < 0.0 || hotOpnFraction > 1.0 {
		hotOpnFraction = 0.0
	}
	if hotsetSize > keyspaceSize {
		hotsetSize = keyspaceSize
	}
	return &KeyChooser{
		prefix:         prefix,
		hotsetSize:     hotsetSize,
		keyspaceSize:   keyspaceSize,
		hotOpnFraction: hotOpnFraction,
	}
}

// Next returns the read key and write key for the next transaction. The two
// draws are independent within the chosen interval, so they may coincide.
// The caller owns r.
func (k *KeyChooser) Next(r *rand.Rand) (readKey, writeKey string) {
	interval := k.keyspaceSize
	if r.Float64() < k.hotOpnFraction {
		interval = k.hotsetSize
	}
	return k.Key(r.Intn(interval)), k.Key(r.Intn(interval))
}

// Key formats the key at index i.
func (k *KeyChooser) Key(i int) string {
	return fmt.Sprintf("%s%d", k.prefix, i)
}
