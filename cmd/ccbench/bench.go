package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ngaut/log"
	"github.com/spf13/cobra"

	"ccbench/cc"
	"ccbench/config"
	"ccbench/metrics"
	"ccbench/workload"
)

var (
	threadsArg     int
	reportInterval int
)

func initBenchCommand(m *cobra.Command) {
	m.Flags().StringSliceVarP(&propertyFiles, "property_file", "P", nil, "Specify a property file")
	m.Flags().StringArrayVarP(&propertyValues, "prop", "p", nil, "Specify a property value with name=value")
	m.Flags().StringVarP(&configPath, "config", "c", "", "Specify the engine config file")
	m.Flags().IntVar(&threadsArg, "threads", 1, "Execute using n threads - can also be specified as the \"threadcount\" property")
	m.Flags().IntVar(&reportInterval, "interval", 10, "Interval of outputting measurements in seconds")
}

func newLoadCommand() *cobra.Command {
	m := &cobra.Command{
		Use:   "load store workload_file",
		Short: "Load a workload data file into the store",
		Args:  cobra.MinimumNArgs(2),
		Run:   runLoadCommandFunc,
	}
	initBenchCommand(m)
	return m
}

func runLoadCommandFunc(cmd *cobra.Command, args []string) {
	initialGlobal(args[0], nil)

	start := time.Now()
	count, err := workload.NewLoader(globalStore).LoadFile(args[1])
	if err != nil {
		log.Fatalf("load %s failed: %v", args[1], err)
	}
	fmt.Printf("Load finished, %d records takes %s\n", count, time.Now().Sub(start))
}

func newRunCommand() *cobra.Command {
	m := &cobra.Command{
		Use:   "run store",
		Short: "Run the concurrency control benchmark",
		Args:  cobra.MinimumNArgs(1),
		Run:   runBenchCommandFunc,
	}
	initBenchCommand(m)
	return m
}

func runBenchCommandFunc(cmd *cobra.Command, args []string) {
	initialGlobal(args[0], func() {
		if cmd.Flags().Changed("threads") {
			// We set the threadArg via command line.
			globalProps.Set(config.PropThreadCount, strconv.Itoa(threadsArg))
		}
		if cmd.Flags().Changed("interval") {
			globalProps.Set(config.PropLogInterval, strconv.Itoa(reportInterval))
		}
	})

	if !globalBench.Silence {
		fmt.Println("***************** properties *****************")
		for key, value := range globalProps.Map() {
			fmt.Printf("\"%s\"=\"%s\"\n", key, value)
		}
		fmt.Println("**********************************************")
	}

	exec := newExecutor(globalBench)
	collector := metrics.NewCollector(exec.Name())
	driver := workload.NewDriver(globalBench, exec, collector)

	start := time.Now()
	if err := driver.Run(globalContext); err != nil {
		log.Fatalf("run failed: %v", err)
	}
	fmt.Printf("Run finished, takes %s\n", time.Now().Sub(start))

	outputResult(collector)
}

func newExecutor(b *config.Bench) cc.Executor {
	mutate := cc.IncrementField(b.MutateField)
	switch b.Mode {
	case config.ModeTwoPL:
		e := cc.NewTwoPL(globalStore, mutate)
		e.RetryMin = b.LockRetryMin
		e.RetryMax = b.LockRetryMax
		return e
	case config.ModeOCC:
		e := cc.NewOCC(globalStore, mutate)
		e.RetainHistory = b.RetainHistory
		return e
	default:
		log.Fatalf("unknown mode %q", b.Mode)
		return nil
	}
}

func outputResult(c *metrics.Collector) {
	if err := c.Output(os.Stdout, globalBench.OutputStyle); err != nil {
		log.Fatalf("render summary: %v", err)
	}

	if globalBench.RawOutputFile == "" {
		return
	}
	f, err := os.Create(globalBench.RawOutputFile)
	if err != nil {
		log.Fatalf("create %s failed: %v", globalBench.RawOutputFile, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := c.DumpCSV(w); err != nil {
		log.Fatalf("write %s failed: %v", globalBench.RawOutputFile, err)
	}
	if err := w.Flush(); err != nil {
		log.Fatalf("flush %s failed: %v", globalBench.RawOutputFile, err)
	}
}
