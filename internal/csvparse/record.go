package csvparse

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Value is a sanitized field: either a string or a finite number.
// The zero Value is the empty string.
type Value struct {
	num   float64
	str   string
	isNum bool
}

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{str: s} }

// NumberValue returns a numeric Value.
func NumberValue(f float64) Value { return Value{num: f, isNum: true} }

// IsNumber reports whether v was coerced to a number.
func (v Value) IsNumber() bool { return v.isNum }

// Float returns the numeric value and whether v is a number.
func (v Value) Float() (float64, bool) { return v.num, v.isNum }

// String returns the string form. Numbers use the shortest representation
// that round-trips, without an exponent for ordinary magnitudes.
func (v Value) String() string {
	if v.isNum {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.str
}

// Interface returns a float64 or a string.
func (v Value) Interface() any {
	if v.isNum {
		return v.num
	}
	return v.str
}

// MarshalJSON encodes numbers as JSON numbers and strings as JSON strings.
func (v Value) MarshalJSON() ([]byte, error) {
	return marshalJSON(v.Interface())
}

// Record is one data row keyed by header name. Keys keep header order.
type Record struct {
	keys   []string
	values map[string]Value
}

// NewRecord builds a Record from parallel key and value slices. A repeated
// key keeps its first position and takes the later value.
func NewRecord(keys []string, values []Value) Record {
	r := Record{
		keys:   make([]string, 0, len(keys)),
		values: make(map[string]Value, len(keys)),
	}
	for i, k := range keys {
		if _, ok := r.values[k]; !ok {
			r.keys = append(r.keys, k)
		}
		var v Value
		if i < len(values) {
			v = values[i]
		}
		r.values[k] = v
	}
	return r
}

// Keys returns the header names in order. The slice must not be modified.
func (r Record) Keys() []string { return r.keys }

// Len returns the number of columns.
func (r Record) Len() int { return len(r.keys) }

// Get returns the value for a header name.
func (r Record) Get(key string) (Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Map returns a plain map of header name to float64 or string.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.keys))
	for _, k := range r.keys {
		m[k] = r.values[k].Interface()
	}
	return m
}

// MarshalJSON encodes the record as a JSON object with keys in header order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalJSON(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := r.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalJSON is json.Marshal without HTML escaping, so cell text like
// "<b>" round-trips unchanged through encoders that disable escaping.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
