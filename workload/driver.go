package workload

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/ngaut/log"
	"github.com/pingcap/errors"
	"go.uber.org/atomic"

	"ccbench/cc"
	"ccbench/config"
	"ccbench/metrics"
)

// Driver runs the configured number of transactions against one executor
// using a fixed pool of worker goroutines. Each transaction is resubmitted
// until it commits, so a finished run counts exactly conf.Transactions
// commits.
type Driver struct {
	conf      *config.Bench
	exec      cc.Executor
	chooser   *KeyChooser
	collector *metrics.Collector
	seq       *atomic.Int64
}

// NewDriver creates a driver for one benchmark run.
func NewDriver(conf *config.Bench, exec cc.Executor, collector *metrics.Collector) *Driver {
	return &Driver{
		conf:      conf,
		exec:      exec,
		chooser:   NewKeyChooser(conf.KeyPrefix, conf.HotsetSize, conf.KeyspaceSize, conf.ContentionProbability),
		collector: collector,
		seq:       atomic.NewInt64(0),
	}
}

// Run blocks until every transaction has committed or a worker failed. The
// first worker error cancels the remaining workers and is returned.
func (d *Driver) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	measureCtx, measureCancel := context.WithCancel(context.Background())
	measureCh := make(chan struct{}, 1)
	go func() {
		defer func() {
			measureCh <- struct{}{}
		}()
		if d.conf.LogInterval <= 0 || d.conf.Silence {
			return
		}
		t := time.NewTicker(d.conf.LogInterval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				if err := d.collector.Output(os.Stdout, metrics.OutputStylePlain); err != nil {
					log.Errorf("progress output: %v", err)
				}
			case <-measureCtx.Done():
				return
			}
		}
	}()

	threadCount := d.conf.Threads
	errCh := make(chan error, threadCount)
	var wg sync.WaitGroup
	wg.Add(threadCount)
	for i := 0; i < threadCount; i++ {
		go func(threadID int) {
			defer wg.Done()
			if err := d.runThread(runCtx, threadID); err != nil {
				errCh <- err
				cancel()
			}
		}(i)
	}

	wg.Wait()
	measureCancel()
	<-measureCh

	close(errCh)
	if err := <-errCh; err != nil {
		return errors.Trace(err)
	}
	return nil
}

// runThread drives this worker's share of the transaction count. The total
// splits as evenly as the thread count allows, the first threads taking the
// remainder.
func (d *Driver) runThread(ctx context.Context, threadID int) error {
	r := rand.New(rand.NewSource(d.threadSeed(threadID)))

	count := d.conf.Transactions / d.conf.Threads
	if threadID < d.conf.Transactions%d.conf.Threads {
		count++
	}

	for i := 0; i < count; i++ {
		select {
		case <-ctx.Done():
			return errors.Trace(ctx.Err())
		default:
		}

		readKey, writeKey := d.chooser.Next(r)
		txn := cc.NewTransaction(fmt.Sprintf("txn%d", d.seq.Inc()), []string{readKey}, []string{writeKey})
		if err := d.runToCommit(ctx, txn); err != nil {
			return err
		}
	}
	return nil
}

// threadSeed derives a per-worker seed. A zero configured seed makes every
// run different.
func (d *Driver) threadSeed(threadID int) int64 {
	if d.conf.Seed != 0 {
		return d.conf.Seed + int64(threadID)
	}
	return time.Now().UnixNano() + int64(threadID)
}

// runToCommit resubmits txn until the executor commits it. Validation
// aborts are recorded and retried with a fresh buffer; executor errors fail
// the run. RetryLimit bounds the resubmissions per transaction, zero meaning
// retry until commit.
func (d *Driver) runToCommit(ctx context.Context, txn *cc.Transaction) error {
	var aborts int
	for {
		ok, err := d.exec.Execute(ctx, txn)
		if err != nil {
			return errors.Annotatef(err, "txn %s", txn.ID)
		}
		if ok {
			txn.Complete()
			d.collector.RecordCommit(txn.CreatedAt, txn.ResponseTime())
			return nil
		}

		d.collector.RecordAbort()
		aborts++
		if d.conf.RetryLimit > 0 && aborts > d.conf.RetryLimit {
			return errors.Errorf("txn %s gave up after %d aborts", txn.ID, aborts)
		}
		txn.ResetBuffer()
	}
}
