package config

import (
	"time"

	"github.com/magiconair/properties"
	"github.com/pingcap/errors"
)

// Concurrency control modes.
const (
	ModeOCC   = "OCC"
	ModeTwoPL = "TWO_PL"
)

// Benchmark properties.
const (
	PropMode        = "mode"
	PropModeDefault = ModeTwoPL

	PropThreadCount        = "threadcount"
	PropThreadCountDefault = int(4)

	PropTransactionCount        = "transactioncount"
	PropTransactionCountDefault = int(1000)

	PropContentionProbability        = "contentionprobability"
	PropContentionProbabilityDefault = float64(0.5)

	PropHotsetSize        = "hotsetsize"
	PropHotsetSizeDefault = int(10)

	PropKeyspaceSize        = "keyspacesize"
	PropKeyspaceSizeDefault = int(1000)

	PropKeyPrefix        = "keyprefix"
	PropKeyPrefixDefault = "key"

	// Seed for the per-thread key choosers. 0 means time-seeded.
	PropSeed        = "seed"
	PropSeedDefault = int64(0)

	// Maximum resubmissions per transaction after an abort. 0 means retry
	// until commit.
	PropRetryLimit        = "retrylimit"
	PropRetryLimitDefault = int(0)

	// Field incremented by the standard write transformation.
	PropMutateField        = "mutate.field"
	PropMutateFieldDefault = "value"

	// Sleep window between failed lock acquisitions.
	PropLockRetryMin        = "twopl.retry.min"
	PropLockRetryMinDefault = time.Millisecond
	PropLockRetryMax        = "twopl.retry.max"
	PropLockRetryMaxDefault = 5 * time.Millisecond

	// Retain the whole commit history instead of pruning entries no
	// running transaction can conflict with.
	PropRetainHistory        = "occ.retain_history"
	PropRetainHistoryDefault = false

	PropLogInterval        = "measurement.interval"
	PropLogIntervalDefault = int64(10)

	PropRawOutputFile = "measurement.output_file"

	PropOutputStyle        = "outputstyle"
	PropOutputStyleDefault = "table"

	PropDropData        = "dropdata"
	PropDropDataDefault = false

	PropSilence        = "silence"
	PropSilenceDefault = false
)

// Bench is the parsed and validated benchmark surface.
type Bench struct {
	Mode                  string
	Threads               int
	Transactions          int
	ContentionProbability float64
	HotsetSize            int
	KeyspaceSize          int
	KeyPrefix             string
	Seed                  int64
	RetryLimit            int
	MutateField           string
	LockRetryMin          time.Duration
	LockRetryMax          time.Duration
	RetainHistory         bool
	LogInterval           time.Duration
	RawOutputFile         string
	OutputStyle           string
	Silence               bool
}

// NewBench parses the benchmark properties and validates them. Invalid
// settings are rejected here, before any worker starts.
func NewBench(p *properties.Properties) (*Bench, error) {
	b := &Bench{
		Mode:                  p.GetString(PropMode, PropModeDefault),
		Threads:               p.GetInt(PropThreadCount, PropThreadCountDefault),
		Transactions:          p.GetInt(PropTransactionCount, PropTransactionCountDefault),
		ContentionProbability: p.GetFloat64(PropContentionProbability, PropContentionProbabilityDefault),
		HotsetSize:            p.GetInt(PropHotsetSize, PropHotsetSizeDefault),
		KeyspaceSize:          p.GetInt(PropKeyspaceSize, PropKeyspaceSizeDefault),
		KeyPrefix:             p.GetString(PropKeyPrefix, PropKeyPrefixDefault),
		Seed:                  p.GetInt64(PropSeed, PropSeedDefault),
		RetryLimit:            p.GetInt(PropRetryLimit, PropRetryLimitDefault),
		MutateField:           p.GetString(PropMutateField, PropMutateFieldDefault),
		LockRetryMin:          p.GetParsedDuration(PropLockRetryMin, PropLockRetryMinDefault),
		LockRetryMax:          p.GetParsedDuration(PropLockRetryMax, PropLockRetryMaxDefault),
		RetainHistory:         p.GetBool(PropRetainHistory, PropRetainHistoryDefault),
		LogInterval:           time.Duration(p.GetInt64(PropLogInterval, PropLogIntervalDefault)) * time.Second,
		RawOutputFile:         p.GetString(PropRawOutputFile, ""),
		OutputStyle:           p.GetString(PropOutputStyle, PropOutputStyleDefault),
		Silence:               p.GetBool(PropSilence, PropSilenceDefault),
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks the benchmark surface for settings no run can honor.
func (b *Bench) Validate() error {
	if b.Mode != ModeOCC && b.Mode != ModeTwoPL {
		return errors.Errorf("unknown mode %q, want %s or %s", b.Mode, ModeOCC, ModeTwoPL)
	}
	if b.Threads <= 0 {
		return errors.Errorf("threadcount must be positive, got %d", b.Threads)
	}
	if b.Transactions <= 0 {
		return errors.Errorf("transactioncount must be positive, got %d", b.Transactions)
	}
	if b.ContentionProbability < 0 || b.ContentionProbability > 1 {
		return errors.Errorf("contentionprobability must be in [0, 1], got %v", b.ContentionProbability)
	}
	if b.HotsetSize <= 0 {
		return errors.Errorf("hotsetsize must be positive, got %d", b.HotsetSize)
	}
	if b.KeyspaceSize < b.HotsetSize {
		return errors.Errorf("keyspacesize %d smaller than hotsetsize %d", b.KeyspaceSize, b.HotsetSize)
	}
	if b.RetryLimit < 0 {
		return errors.Errorf("retrylimit must not be negative, got %d", b.RetryLimit)
	}
	if b.MutateField == "" {
		return errors.New("mutate.field must not be empty")
	}
	if b.LockRetryMin <= 0 || b.LockRetryMax < b.LockRetryMin {
		return errors.Errorf("invalid lock retry window [%v, %v]", b.LockRetryMin, b.LockRetryMax)
	}
	return nil
}
