package workload

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pingcap/errors"

	"ccbench/kv"
)

// Loader populates a store from the workload text format. Records sit in an
// INSERT block, one per line:
//
//	INSERT
//	KEY: A_1, VALUE: {name: "Account-1", balance: 153}
//	END
//
// Lines before INSERT and non-KEY lines inside the block are ignored, so the
// files can carry comments and run directives for other tools.
type Loader struct {
	store kv.Store
}

// NewLoader creates a Loader writing into store.
func NewLoader(store kv.Store) *Loader {
	return &Loader{store: store}
}

// LoadFile opens path and loads its INSERT block.
func (l *Loader) LoadFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Trace(err)
	}
	defer f.Close()
	return l.Load(f)
}

// Load reads the INSERT block from r and puts every parsed record into the
// store. It returns the number of records loaded. A block without a closing
// END is accepted.
func (l *Loader) Load(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	var (
		insertMode bool
		lineno     int
		count      int
	)
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())

		if line == "INSERT" {
			insertMode = true
			continue
		}
		if line == "END" && insertMode {
			break
		}
		if !insertMode || !strings.HasPrefix(line, "KEY:") {
			continue
		}

		key, rec, err := parseDataLine(line)
		if err != nil {
			return count, errors.Annotatef(err, "line %d", lineno)
		}
		if err := l.store.Put(key, rec); err != nil {
			return count, errors.Annotatef(err, "line %d: put %s", lineno, key)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, errors.Trace(err)
	}
	return count, nil
}

func parseDataLine(line string) (string, kv.Record, error) {
	parts := strings.SplitN(line, "VALUE:", 2)
	if len(parts) != 2 {
		return "", nil, errors.Errorf("data line %q has no VALUE part", line)
	}

	key := strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(parts[0], "KEY:"), ",", ""))
	if key == "" {
		return "", nil, errors.Errorf("data line %q has an empty key", line)
	}

	body := strings.TrimSpace(parts[1])
	if !strings.HasPrefix(body, "{") || !strings.HasSuffix(body, "}") {
		return "", nil, errors.Errorf("value %q is not brace delimited", body)
	}
	body = body[1 : len(body)-1]

	rec := make(kv.Record)
	for _, field := range splitFields(body) {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		name, value, err := parseField(field)
		if err != nil {
			return "", nil, err
		}
		rec[name] = value
	}
	return key, rec, nil
}

// splitFields splits on commas outside double quotes, so string values may
// contain commas.
func splitFields(s string) []string {
	var (
		parts   []string
		start   int
		inQuote bool
		escaped bool
	)
	for i, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
		case r == ',' && !inQuote:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

func parseField(field string) (string, kv.Value, error) {
	idx := strings.Index(field, ":")
	if idx < 0 {
		return "", kv.Value{}, errors.Errorf("field %q has no value", field)
	}
	name := strings.TrimSpace(field[:idx])
	if name == "" {
		return "", kv.Value{}, errors.Errorf("field %q has an empty name", field)
	}
	raw := strings.TrimSpace(field[idx+1:])

	if strings.HasPrefix(raw, `"`) {
		s, err := strconv.Unquote(raw)
		if err != nil {
			return "", kv.Value{}, errors.Annotatef(err, "field %q", field)
		}
		return name, kv.StrValue(s), nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", kv.Value{}, errors.Annotatef(err, "field %q", field)
	}
	return name, kv.IntValue(n), nil
}
