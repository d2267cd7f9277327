package config

import (
	"testing"
	"time"

	"github.com/magiconair/properties"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBenchDefaults(t *testing.T) {
	b, err := NewBench(properties.NewProperties())
	require.NoError(t, err)

	assert.Equal(t, ModeTwoPL, b.Mode)
	assert.Equal(t, 4, b.Threads)
	assert.Equal(t, 1000, b.Transactions)
	assert.Equal(t, 0.5, b.ContentionProbability)
	assert.Equal(t, 10, b.HotsetSize)
	assert.Equal(t, 1000, b.KeyspaceSize)
	assert.Equal(t, "key", b.KeyPrefix)
	assert.Equal(t, int64(0), b.Seed)
	assert.Equal(t, 0, b.RetryLimit)
	assert.Equal(t, "value", b.MutateField)
	assert.Equal(t, time.Millisecond, b.LockRetryMin)
	assert.Equal(t, 5*time.Millisecond, b.LockRetryMax)
	assert.False(t, b.RetainHistory)
	assert.Equal(t, 10*time.Second, b.LogInterval)
	assert.Equal(t, "table", b.OutputStyle)
}

func TestNewBenchFromProperties(t *testing.T) {
	p := properties.NewProperties()
	p.Set(PropMode, "OCC")
	p.Set(PropThreadCount, "8")
	p.Set(PropTransactionCount, "400")
	p.Set(PropContentionProbability, "1.0")
	p.Set(PropHotsetSize, "5")
	p.Set(PropKeyspaceSize, "100")
	p.Set(PropKeyPrefix, "acct_")
	p.Set(PropSeed, "42")
	p.Set(PropRetryLimit, "3")
	p.Set(PropMutateField, "balance")
	p.Set(PropLockRetryMin, "2ms")
	p.Set(PropLockRetryMax, "7ms")
	p.Set(PropRetainHistory, "true")
	p.Set(PropLogInterval, "1")
	p.Set(PropRawOutputFile, "/tmp/raw.csv")
	p.Set(PropOutputStyle, "json")
	p.Set(PropSilence, "true")

	b, err := NewBench(p)
	require.NoError(t, err)

	assert.Equal(t, ModeOCC, b.Mode)
	assert.Equal(t, 8, b.Threads)
	assert.Equal(t, 400, b.Transactions)
	assert.Equal(t, 1.0, b.ContentionProbability)
	assert.Equal(t, 5, b.HotsetSize)
	assert.Equal(t, 100, b.KeyspaceSize)
	assert.Equal(t, "acct_", b.KeyPrefix)
	assert.Equal(t, int64(42), b.Seed)
	assert.Equal(t, 3, b.RetryLimit)
	assert.Equal(t, "balance", b.MutateField)
	assert.Equal(t, 2*time.Millisecond, b.LockRetryMin)
	assert.Equal(t, 7*time.Millisecond, b.LockRetryMax)
	assert.True(t, b.RetainHistory)
	assert.Equal(t, time.Second, b.LogInterval)
	assert.Equal(t, "/tmp/raw.csv", b.RawOutputFile)
	assert.Equal(t, "json", b.OutputStyle)
	assert.True(t, b.Silence)
}

func TestBenchValidate(t *testing.T) {
	valid := func() *Bench {
		b, err := NewBench(properties.NewProperties())
		require.NoError(t, err)
		return b
	}

	tests := []struct {
		name   string
		tweak  func(*Bench)
		errStr string
	}{
		{"bad mode", func(b *Bench) { b.Mode = "MVCC" }, "unknown mode"},
		{"zero threads", func(b *Bench) { b.Threads = 0 }, "threadcount"},
		{"negative transactions", func(b *Bench) { b.Transactions = -1 }, "transactioncount"},
		{"probability above one", func(b *Bench) { b.ContentionProbability = 1.5 }, "contentionprobability"},
		{"negative probability", func(b *Bench) { b.ContentionProbability = -0.1 }, "contentionprobability"},
		{"zero hotset", func(b *Bench) { b.HotsetSize = 0 }, "hotsetsize"},
		{"keyspace below hotset", func(b *Bench) { b.KeyspaceSize = 5 }, "keyspacesize"},
		{"negative retry limit", func(b *Bench) { b.RetryLimit = -1 }, "retrylimit"},
		{"empty mutate field", func(b *Bench) { b.MutateField = "" }, "mutate.field"},
		{"zero retry min", func(b *Bench) { b.LockRetryMin = 0 }, "retry window"},
		{"max below min", func(b *Bench) { b.LockRetryMax = b.LockRetryMin / 2 }, "retry window"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := valid()
			tt.tweak(b)
			err := b.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errStr)
		})
	}

	assert.NoError(t, valid().Validate())
}

func TestNewBenchRejectsInvalid(t *testing.T) {
	p := properties.NewProperties()
	p.Set(PropMode, "nope")
	_, err := NewBench(p)
	assert.Error(t, err)
}
