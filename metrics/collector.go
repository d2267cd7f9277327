// Package metrics accumulates per-run benchmark measurements and renders
// the end-of-run summary.
package metrics

import (
	"fmt"
	"io"
	"sync"
	"time"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
	"github.com/montanaflynn/stats"
	"github.com/pingcap/errors"
)

var header = []string{"Mode", "Takes(s)", "Commits", "Aborts", "OPS", "Avg(us)", "Min(us)", "Max(us)", "99th(us)", "99.9th(us)"}

type entry struct {
	// start time of the transaction in us from unix epoch
	startUs int64
	// response time of the transaction in us, spanning all retried attempts
	latencyUs int64
}

// Collector accumulates commit and abort counts plus response times for one
// benchmark run. It is safe for concurrent use by the worker goroutines.
type Collector struct {
	mu sync.Mutex

	mode      string
	startTime time.Time
	aborts    int64
	entries   []entry
	hist      *hdrhistogram.Histogram
}

// NewCollector creates a collector for a run of the named mode. The
// throughput window starts now.
func NewCollector(mode string) *Collector {
	return &Collector{
		mode:      mode,
		startTime: time.Now(),
		hist:      hdrhistogram.New(1, 24*60*60*1000*1000, 3),
	}
}

// Mode returns the executor name the collector was created for.
func (c *Collector) Mode() string {
	return c.mode
}

// RecordCommit records one committed transaction. start is the transaction
// creation time and latency its response time, which covers every aborted
// attempt before the commit.
func (c *Collector) RecordCommit(start time.Time, latency time.Duration) {
	c.mu.Lock()
	c.entries = append(c.entries, entry{startUs: start.UnixMicro(), latencyUs: latency.Microseconds()})
	c.hist.RecordValue(latency.Microseconds())
	c.mu.Unlock()

	commitCounter.Inc()
	responseTimeHistogram.Observe(latency.Seconds())
}

// RecordAbort records one aborted attempt. A transaction that aborts three
// times before committing contributes three aborts and one commit.
func (c *Collector) RecordAbort() {
	c.mu.Lock()
	c.aborts++
	c.mu.Unlock()

	abortCounter.Inc()
}

// Commits returns the number of committed transactions so far.
func (c *Collector) Commits() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(len(c.entries))
}

// Aborts returns the number of aborted attempts so far.
func (c *Collector) Aborts() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aborts
}

// Throughput returns committed transactions per second since the collector
// was created.
func (c *Collector) Throughput() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := time.Since(c.startTime).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(len(c.entries)) / elapsed
}

// AvgResponseTime returns the mean response time over all committed
// transactions, zero when nothing has committed yet.
func (c *Collector) AvgResponseTime() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.avgLocked()
}

func (c *Collector) avgLocked() time.Duration {
	if len(c.entries) == 0 {
		return 0
	}
	series := make([]float64, len(c.entries))
	for i, e := range c.entries {
		series[i] = float64(e.latencyUs)
	}
	mean, _ := stats.Mean(series)
	return time.Duration(mean) * time.Microsecond
}

// Summary returns the values for one output line, ordered like header.
func (c *Collector) Summary() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := time.Since(c.startTime).Seconds()
	commits := int64(len(c.entries))
	var ops float64
	if elapsed > 0 {
		ops = float64(commits) / elapsed
	}
	return []string{
		c.mode,
		floatToOneString(elapsed),
		intToString(commits),
		intToString(c.aborts),
		floatToOneString(ops),
		intToString(c.avgLocked().Microseconds()),
		intToString(c.hist.Min()),
		intToString(c.hist.Max()),
		intToString(c.hist.ValueAtPercentile(99)),
		intToString(c.hist.ValueAtPercentile(99.9)),
	}
}

// Output renders the summary in the requested style.
func (c *Collector) Output(w io.Writer, style string) error {
	lines := [][]string{c.Summary()}
	switch style {
	case OutputStylePlain:
		RenderString(w, "%-6s - %s\n", header, lines)
	case OutputStyleJson:
		RenderJson(w, header, lines)
	case OutputStyleTable:
		RenderTable(w, header, lines)
	default:
		return errors.Errorf("unsupported outputstyle: %s", style)
	}
	return nil
}

// DumpCSV writes one row per committed transaction with its start timestamp
// and response time in microseconds.
func (c *Collector) DumpCSV(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := fmt.Fprintln(w, "operation,timestamp_us,latency_us"); err != nil {
		return errors.Trace(err)
	}
	for _, e := range c.entries {
		if _, err := fmt.Fprintf(w, "%s,%d,%d\n", c.mode, e.startUs, e.latencyUs); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}
