package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	conf, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultConf, *conf)
	assert.Equal(t, "info", conf.LogLevel)
	assert.Equal(t, "/tmp/ccbench", conf.Engine.DBPath)
	assert.Equal(t, int64(64*MB), conf.Engine.MaxTableSize)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ccbench.toml")
	data := `
http-addr = "127.0.0.1:9291"
log-level = "debug"

[engine]
db-path = "/data/bench"
sync-writes = true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9291", conf.HTTPAddr)
	assert.Equal(t, "debug", conf.LogLevel)
	assert.Equal(t, "/data/bench", conf.Engine.DBPath)
	assert.True(t, conf.Engine.SyncWrites)

	// untouched settings keep their defaults
	assert.Equal(t, DefaultConf.Engine.NumMemTables, conf.Engine.NumMemTables)
	assert.Equal(t, DefaultConf.Engine.TableLoadingMode, conf.Engine.TableLoadingMode)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
