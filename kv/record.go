package kv

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/pingcap/errors"
)

// Value kinds double as the encoding flag bytes, so a decoded record keeps
// the discriminator it was stored with.
const (
	KindStr Kind = 2
	KindInt Kind = 8
)

// Kind tells which arm of a Value is meaningful.
type Kind byte

// Value is a single typed field value.
type Value struct {
	Kind Kind
	Int  int64
	Str  string
}

// IntValue wraps an integer as a Value.
func IntValue(v int64) Value { return Value{Kind: KindInt, Int: v} }

// StrValue wraps a string as a Value.
func StrValue(s string) Value { return Value{Kind: KindStr, Str: s} }

// String renders the value the way the workload files write it: integers
// bare, strings quoted.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindStr:
		return strconv.Quote(v.Str)
	default:
		return fmt.Sprintf("unknown(%d)", v.Kind)
	}
}

// Record is a schema-free row: field name to typed value. A nil Record reads
// as empty; writers must allocate before setting fields.
type Record map[string]Value

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// GetInt returns the integer stored under field, or 0 when the field is
// missing or holds a non-integer value.
func (r Record) GetInt(field string) int64 {
	v, ok := r[field]
	if !ok || v.Kind != KindInt {
		return 0
	}
	return v.Int
}

// SetInt stores an integer under field.
func (r Record) SetInt(field string, v int64) {
	r[field] = IntValue(v)
}

// EncodeRecord encodes a record into a slice of byte.
// Record layout: name1, value1, name2, value2, ...
// buf is passed by the caller to reduce allocations; pass nil to let
// EncodeRecord allocate it.
func EncodeRecord(rec Record, buf []byte) ([]byte, error) {
	buf = buf[:0]
	if len(rec) == 0 {
		return append(buf, 0), nil
	}
	for name, v := range rec {
		buf = encodeBytes(buf, []byte(name))
		switch v.Kind {
		case KindInt:
			buf = encodeInt64(buf, v.Int)
		case KindStr:
			buf = encodeBytes(buf, []byte(v.Str))
		default:
			return nil, errors.Errorf("EncodeRecord error: unknown kind %d for field %s", v.Kind, name)
		}
	}
	return buf, nil
}

func encodeInt64(b []byte, v int64) []byte {
	b = append(b, byte(KindInt))
	return appendVarint(b, v)
}

func encodeBytes(b []byte, v []byte) []byte {
	b = append(b, byte(KindStr))
	b = appendVarint(b, int64(len(v)))
	return append(b, v...)
}

func appendVarint(b []byte, v int64) []byte {
	var data [binary.MaxVarintLen64]byte
	n := binary.PutVarint(data[:], v)
	return append(b, data[:n]...)
}

// DecodeRecord decodes a byte slice produced by EncodeRecord.
func DecodeRecord(b []byte) (Record, error) {
	rec := make(Record)
	if len(b) == 0 {
		return rec, nil
	}
	if len(b) == 1 && b[0] == 0 {
		return rec, nil
	}
	for len(b) > 0 {
		remain, name, err := decodeBytes(b)
		if err != nil {
			return rec, err
		}
		if len(remain) == 0 {
			return rec, errors.Errorf("insufficient bytes to decode value for field %s", name)
		}
		switch Kind(remain[0]) {
		case KindInt:
			var v int64
			remain, v, err = decodeVarint(remain[1:])
			if err != nil {
				return rec, err
			}
			rec[string(name)] = IntValue(v)
		case KindStr:
			var v []byte
			remain, v, err = decodeBytes(remain)
			if err != nil {
				return rec, err
			}
			rec[string(name)] = StrValue(string(v))
		default:
			return rec, errors.Errorf("DecodeRecord error: unknown kind %d for field %s", remain[0], name)
		}
		b = remain
	}
	return rec, nil
}

func decodeVarint(b []byte) ([]byte, int64, error) {
	v, n := binary.Varint(b)
	if n > 0 {
		return b[n:], v, nil
	}
	if n < 0 {
		return nil, 0, errors.New("value larger than 64 bits")
	}
	return nil, 0, errors.New("insufficient bytes to decode value")
}

func decodeBytes(b []byte) ([]byte, []byte, error) {
	if len(b) == 0 || Kind(b[0]) != KindStr {
		return nil, nil, errors.New("invalid encoded bytes flag")
	}
	remain, n, err := decodeVarint(b[1:])
	if err != nil {
		return nil, nil, err
	}
	if n < 0 || int64(len(remain)) < n {
		return nil, nil, errors.Errorf("insufficient bytes to decode value, expected length: %v", n)
	}
	return remain[n:], remain[:n], nil
}
