package metrics

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector("OCC")
	start := time.Now()
	for i := 0; i < 5; i++ {
		c.RecordCommit(start, time.Duration(i+1)*time.Millisecond)
	}
	for i := 0; i < 3; i++ {
		c.RecordAbort()
	}

	assert.Equal(t, int64(5), c.Commits())
	assert.Equal(t, int64(3), c.Aborts())
	assert.True(t, c.AvgResponseTime() >= 0)
	assert.True(t, c.Throughput() > 0)
}

func TestCollectorZeroState(t *testing.T) {
	c := NewCollector("OCC")
	assert.Equal(t, int64(0), c.Commits())
	assert.Equal(t, int64(0), c.Aborts())
	assert.Equal(t, time.Duration(0), c.AvgResponseTime())
	assert.Equal(t, float64(0), c.Throughput())
}

func TestCollectorAvgResponseTime(t *testing.T) {
	c := NewCollector("TWO_PL")
	start := time.Now()
	c.RecordCommit(start, 2*time.Millisecond)
	c.RecordCommit(start, 4*time.Millisecond)

	assert.Equal(t, 3*time.Millisecond, c.AvgResponseTime())
}

func TestCollectorSummary(t *testing.T) {
	c := NewCollector("OCC")
	c.RecordCommit(time.Now(), time.Millisecond)
	c.RecordAbort()

	row := c.Summary()
	require.Len(t, row, len(header))
	assert.Equal(t, "OCC", row[0])
	assert.Equal(t, "1", row[2])
	assert.Equal(t, "1", row[3])
}

func TestCollectorOutputStyles(t *testing.T) {
	c := NewCollector("OCC")
	c.RecordCommit(time.Now(), time.Millisecond)

	var table bytes.Buffer
	require.NoError(t, c.Output(&table, OutputStyleTable))
	assert.Contains(t, table.String(), "OCC")

	var plain bytes.Buffer
	require.NoError(t, c.Output(&plain, OutputStylePlain))
	assert.True(t, strings.HasPrefix(plain.String(), "OCC"))
	assert.Contains(t, plain.String(), "Commits: 1")

	var js bytes.Buffer
	require.NoError(t, c.Output(&js, OutputStyleJson))
	assert.Contains(t, js.String(), `"Mode":"OCC"`)

	assert.Error(t, c.Output(&table, "yaml"))
}

func TestCollectorDumpCSV(t *testing.T) {
	c := NewCollector("TWO_PL")
	start := time.Unix(100, 2000)
	c.RecordCommit(start, 1500*time.Microsecond)

	var buf bytes.Buffer
	require.NoError(t, c.DumpCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "operation,timestamp_us,latency_us", lines[0])
	assert.Equal(t, "TWO_PL,100000002,1500", lines[1])
}

func TestCollectorConcurrent(t *testing.T) {
	c := NewCollector("OCC")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.RecordCommit(time.Now(), time.Millisecond)
				c.RecordAbort()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(800), c.Commits())
	assert.Equal(t, int64(800), c.Aborts())
}
