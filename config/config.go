package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pingcap/errors"
)

// Config holds the runtime options that do not belong to a particular
// benchmark run: logging, the debug HTTP endpoint and the storage engine.
type Config struct {
	HTTPAddr string `toml:"http-addr"` // Debug HTTP endpoint (pprof + metrics). Empty disables it.
	LogLevel string `toml:"log-level"`
	MaxProcs int    `toml:"max-procs"` // Max CPU cores to use, set 0 to use all CPU cores in the machine.
	Engine   Engine `toml:"engine"`    // Engine options.
}

// Engine configures the badger store.
type Engine struct {
	DBPath         string `toml:"db-path"`   // Directory to store the data in. Should exist and be writable.
	VlogPath       string `toml:"vlog-path"` // Directory to store the value log in. Can be the same as db-path.
	SyncWrites     bool   `toml:"sync-writes"`
	ValueThreshold int    `toml:"value-threshold"` // If value size >= this threshold, only store value offsets in tree.
	MaxTableSize   int64  `toml:"max-table-size"`  // Each table is at most this size.
	NumMemTables   int    `toml:"num-mem-tables"`  // Maximum number of tables to keep in memory, before stalling.
	NumL0Tables    int    `toml:"num-L0-tables"`   // Maximum number of Level 0 tables before we start compacting.
	NumL0Stall     int    `toml:"num-L0-tables-stall"`
	VlogFileSize   int64  `toml:"vlog-file-size"`
	NumCompactors  int    `toml:"num-compactors"`

	// How the LSM tree and the value log are accessed:
	// FileIO, LoadToRAM or MemoryMap.
	TableLoadingMode    string `toml:"table-loading-mode"`
	ValueLogLoadingMode string `toml:"value-log-loading-mode"`
}

const MB = 1024 * 1024

var DefaultConf = Config{
	HTTPAddr: "",
	LogLevel: "info",
	MaxProcs: 0,
	Engine: Engine{
		DBPath:              "/tmp/ccbench",
		ValueThreshold:      32,
		MaxTableSize:        64 * MB,
		NumMemTables:        3,
		NumL0Tables:         4,
		NumL0Stall:          8,
		VlogFileSize:        256 * MB,
		SyncWrites:          false,
		NumCompactors:       1,
		TableLoadingMode:    "LoadToRAM",
		ValueLogLoadingMode: "MemoryMap",
	},
}

// Load returns DefaultConf overridden by the TOML file at path, if any.
func Load(path string) (*Config, error) {
	conf := DefaultConf
	if path != "" {
		if _, err := toml.DecodeFile(path, &conf); err != nil {
			return nil, errors.Annotatef(err, "load config %s", path)
		}
	}
	return &conf, nil
}
