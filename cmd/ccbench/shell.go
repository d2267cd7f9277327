package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/ngaut/log"
	"github.com/spf13/cobra"

	"ccbench/kv"
	"ccbench/workload"
)

func newShellCommand() *cobra.Command {
	m := &cobra.Command{
		Use:   "shell store",
		Short: "Interactive store client",
		Args:  cobra.MinimumNArgs(1),
		Run:   runShellCommandFunc,
	}
	m.Flags().StringSliceVarP(&propertyFiles, "property_file", "P", nil, "Specify a property file")
	m.Flags().StringArrayVarP(&propertyValues, "prop", "p", nil, "Specify a property value with name=value")
	m.Flags().StringVarP(&configPath, "config", "c", "", "Specify the engine config file")
	return m
}

func runShellCommandFunc(cmd *cobra.Command, args []string) {
	initialGlobal(args[0], nil)
	shellLoop()
}

func runShellCommand(args []string) {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Shell command",
	}

	cmd.SetArgs(args)
	cmd.ParseFlags(args)

	cmd.AddCommand(
		&cobra.Command{
			Use:                   "get key",
			Short:                 "Read a record",
			Args:                  cobra.MinimumNArgs(1),
			Run:                   runShellGetCommand,
			DisableFlagsInUseLine: true,
		},
		&cobra.Command{
			Use:                   "put key field0=value0 [field1=value1 ...]",
			Short:                 "Write a record, replacing any existing one",
			Args:                  cobra.MinimumNArgs(2),
			Run:                   runShellPutCommand,
			DisableFlagsInUseLine: true,
		},
		&cobra.Command{
			Use:                   "delete key",
			Short:                 "Delete a record",
			Args:                  cobra.MinimumNArgs(1),
			Run:                   runShellDeleteCommand,
			DisableFlagsInUseLine: true,
		},
		&cobra.Command{
			Use:                   "load workload_file",
			Short:                 "Load a workload data file",
			Args:                  cobra.MinimumNArgs(1),
			Run:                   runShellLoadCommand,
			DisableFlagsInUseLine: true,
		},
	)

	if err := cmd.Execute(); err != nil {
		fmt.Println(cmd.UsageString())
	}
}

func runShellGetCommand(cmd *cobra.Command, args []string) {
	key := args[0]
	rec, err := globalStore.Get(key)
	if err != nil {
		fmt.Printf("Get %s failed %v\n", key, err)
		return
	}
	if rec == nil {
		fmt.Printf("Get empty for %s\n", key)
		return
	}

	fmt.Printf("Get %s ok\n", key)
	for field, value := range rec {
		fmt.Printf("%s=%s\n", field, value)
	}
}

func runShellPutCommand(cmd *cobra.Command, args []string) {
	key := args[0]
	rec := make(kv.Record, len(args[1:]))

	for _, arg := range args[1:] {
		sep := strings.SplitN(arg, "=", 2)
		if len(sep) != 2 {
			fmt.Printf("bad field %q, expected format field=value\n", arg)
			return
		}
		if n, err := strconv.ParseInt(sep[1], 10, 64); err == nil {
			rec[sep[0]] = kv.IntValue(n)
		} else {
			rec[sep[0]] = kv.StrValue(sep[1])
		}
	}

	if err := globalStore.Put(key, rec); err != nil {
		fmt.Printf("Put %s failed %v\n", key, err)
		return
	}
	fmt.Printf("Put %s ok\n", key)
}

func runShellDeleteCommand(cmd *cobra.Command, args []string) {
	key := args[0]
	if err := globalStore.Delete(key); err != nil {
		fmt.Printf("Delete %s failed %v\n", key, err)
		return
	}
	fmt.Printf("Delete %s ok\n", key)
}

func runShellLoadCommand(cmd *cobra.Command, args []string) {
	count, err := workload.NewLoader(globalStore).LoadFile(args[0])
	if err != nil {
		fmt.Printf("Load %s failed %v\n", args[0], err)
		return
	}
	fmt.Printf("Load %s ok, %d records\n", args[0], count)
}

func shellLoop() {
	l, err := readline.NewEx(&readline.Config{
		Prompt:            "\033[31m»\033[0m ",
		HistoryFile:       "/tmp/ccbench-readline.tmp",
		InterruptPrompt:   "^C",
		EOFPrompt:         "^D",
		HistorySearchFold: true,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer l.Close()

	for {
		line, err := l.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				return
			} else if err == io.EOF {
				return
			}
			continue
		}
		if line == "exit" {
			return
		}
		args := strings.Split(strings.TrimSpace(line), " ")
		runShellCommand(args)
	}
}
