package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/magiconair/properties"
	"github.com/ngaut/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"ccbench/config"
	"ccbench/kv"
)

var (
	propertyFiles  []string
	propertyValues []string
	configPath     string

	globalContext context.Context
	globalCancel  context.CancelFunc

	globalProps *properties.Properties
	globalConf  *config.Config
	globalBench *config.Bench
	globalStore kv.Store
)

// initialGlobal layers the property files and -p overrides, loads the engine
// config and opens the store the subcommand will run against.
func initialGlobal(storeName string, onProperties func()) {
	globalProps = properties.NewProperties()
	if len(propertyFiles) > 0 {
		globalProps = properties.MustLoadFiles(propertyFiles, properties.UTF8, false)
	}

	for _, prop := range propertyValues {
		seps := strings.SplitN(prop, "=", 2)
		if len(seps) != 2 {
			log.Fatalf("bad property: `%s`, expected format `name=value`", prop)
		}
		globalProps.Set(seps[0], seps[1])
	}

	if onProperties != nil {
		onProperties()
	}

	var err error
	globalConf, err = config.Load(configPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	if globalConf.MaxProcs > 0 {
		runtime.GOMAXPROCS(globalConf.MaxProcs)
	}
	log.SetLevelByString(globalConf.LogLevel)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)

	globalBench, err = config.NewBench(globalProps)
	if err != nil {
		log.Fatalf("invalid benchmark properties: %v", err)
	}

	if globalConf.HTTPAddr != "" {
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Infof("listening on %v", globalConf.HTTPAddr)
			if err := http.ListenAndServe(globalConf.HTTPAddr, nil); err != nil {
				log.Fatal(err)
			}
		}()
	}

	globalStore = openStore(storeName)
}

func openStore(name string) kv.Store {
	switch name {
	case "badger":
		if globalProps.GetBool(config.PropDropData, config.PropDropDataDefault) {
			if err := kv.DestroyBadger(&globalConf.Engine); err != nil {
				log.Fatalf("drop data failed: %v", err)
			}
		}
		store, err := kv.NewBadgerStore(&globalConf.Engine)
		if err != nil {
			log.Fatalf("open badger at %s failed: %v", globalConf.Engine.DBPath, err)
		}
		return store
	case "memory":
		return kv.NewMemStore()
	default:
		log.Fatalf("unknown store %q, want badger or memory", name)
		return nil
	}
}

func main() {
	globalContext, globalCancel = context.WithCancel(context.Background())

	sc := make(chan os.Signal, 1)
	signal.Notify(sc,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	closeDone := make(chan struct{}, 1)
	go func() {
		sig := <-sc
		fmt.Printf("\nGot signal [%v] to exit.\n", sig)
		globalCancel()

		select {
		case <-sc:
			// send signal again, return directly
			fmt.Printf("\nGot signal [%v] again to exit.\n", sig)
			os.Exit(1)
		case <-time.After(10 * time.Second):
			fmt.Print("\nWait 10s for closed, force exit\n")
			os.Exit(1)
		case <-closeDone:
			return
		}
	}()

	rootCmd := &cobra.Command{
		Use:   "ccbench",
		Short: "Concurrency control benchmark",
	}

	rootCmd.AddCommand(
		newShellCommand(),
		newLoadCommand(),
		newRunCommand(),
	)

	cobra.EnablePrefixMatching = true

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(rootCmd.UsageString())
	}

	globalCancel()
	if globalStore != nil {
		if err := globalStore.Close(); err != nil {
			log.Errorf("close store: %v", err)
		}
	}

	closeDone <- struct{}{}
}
