package workload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ccbench/kv"
)

func TestLoaderBasic(t *testing.T) {
	input := `# transfer workload, 2 accounts
RUN OCC

INSERT
KEY: A_1, VALUE: {name: "Account-1", balance: 153}
KEY: A_2, VALUE: {name: "Last, First", balance: -7}
END
KEY: A_3, VALUE: {balance: 1}
`
	store := kv.NewMemStore()
	count, err := NewLoader(store).Load(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	rec, err := store.Get("A_1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, kv.StrValue("Account-1"), rec["name"])
	assert.Equal(t, int64(153), rec.GetInt("balance"))

	rec, err = store.Get("A_2")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, kv.StrValue("Last, First"), rec["name"])
	assert.Equal(t, int64(-7), rec.GetInt("balance"))

	// everything after END is ignored
	rec, err = store.Get("A_3")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestLoaderWithoutEnd(t *testing.T) {
	input := `INSERT
KEY: k1, VALUE: {balance: 1}
KEY: k2, VALUE: {balance: 2}
`
	store := kv.NewMemStore()
	count, err := NewLoader(store).Load(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestLoaderSkipsNonKeyLines(t *testing.T) {
	input := `INSERT

# comment inside the block
KEY: k1, VALUE: {balance: 1}
END
`
	store := kv.NewMemStore()
	count, err := NewLoader(store).Load(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLoaderEmptyValue(t *testing.T) {
	input := "INSERT\nKEY: k1, VALUE: {}\nEND\n"
	store := kv.NewMemStore()
	count, err := NewLoader(store).Load(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	rec, err := store.Get("k1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Len(t, rec, 0)
}

func TestLoaderMalformedLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "missing value part",
			input: "INSERT\nKEY: k1\nEND\n",
			want:  "line 2",
		},
		{
			name:  "no braces",
			input: "INSERT\nKEY: k1, VALUE: balance: 1\nEND\n",
			want:  "brace",
		},
		{
			name:  "bad integer",
			input: "INSERT\nKEY: k1, VALUE: {balance: 12.5}\nEND\n",
			want:  "line 2",
		},
		{
			name:  "unterminated string",
			input: "INSERT\nKEY: k1, VALUE: {name: \"oops}\nEND\n",
			want:  "line 2",
		},
		{
			name:  "empty key",
			input: "INSERT\nKEY: , VALUE: {balance: 1}\nEND\n",
			want:  "empty key",
		},
		{
			name:  "empty field name",
			input: "INSERT\nKEY: k1, VALUE: {: 1}\nEND\n",
			want:  "empty name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(kv.NewMemStore()).Load(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workload.txt")
	require.NoError(t, os.WriteFile(path, []byte("INSERT\nKEY: k1, VALUE: {balance: 9}\nEND\n"), 0644))

	store := kv.NewMemStore()
	count, err := NewLoader(store).LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = NewLoader(store).LoadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
