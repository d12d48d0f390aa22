// Package listing serializes list payload entries for display.
package listing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"unicode/utf8"

	"graphview/internal/graph"
)

// Serialize renders an entry the way JSON.stringify prints the parsed value:
// compact, strings unescaped where JSON allows, numbers in browser form.
// Object keys keep their first-seen order, except that array-index keys
// ("0", "17") come first in ascending order. A repeated key keeps its first
// position and its last value.
func Serialize(entry json.RawMessage) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(entry))
	dec.UseNumber()

	v, err := parseValue(dec)
	if err != nil {
		return "", fmt.Errorf("failed to serialize entry: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return "", fmt.Errorf("failed to serialize entry: trailing data")
	}

	var buf bytes.Buffer
	writeValue(&buf, v)
	return buf.String(), nil
}

// Lines serializes every entry in order.
func Lines(list graph.ListPayload) ([]string, error) {
	lines := make([]string, 0, len(list))
	for i, entry := range list {
		line, err := Serialize(entry)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

type object struct {
	keys   []string
	values map[string]any
}

func parseValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := &object{values: make(map[string]any)}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", kt)
				}
				v, err := parseValue(dec)
				if err != nil {
					return nil, err
				}
				if _, seen := obj.values[key]; !seen {
					obj.keys = append(obj.keys, key)
				}
				obj.values[key] = v
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			list := []any{}
			for dec.More() {
				v, err := parseValue(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case json.Number:
		f, err := graph.ParseNumber(t.String())
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	// string, bool or nil
	return tok, nil
}

func writeValue(buf *bytes.Buffer, v any) {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(t))
	case float64:
		if math.IsInf(t, 0) || math.IsNaN(t) {
			buf.WriteString("null")
		} else {
			buf.WriteString(graph.FormatNumber(t))
		}
	case string:
		writeString(buf, t)
	case []any:
		buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeValue(buf, item)
		}
		buf.WriteByte(']')
	case *object:
		buf.WriteByte('{')
		for i, key := range orderedKeys(t.keys) {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, key)
			buf.WriteByte(':')
			writeValue(buf, t.values[key])
		}
		buf.WriteByte('}')
	}
}

// orderedKeys puts array-index keys first, ascending, then the rest in
// insertion order.
func orderedKeys(keys []string) []string {
	var indexes, names []string
	for _, k := range keys {
		if _, ok := arrayIndex(k); ok {
			indexes = append(indexes, k)
		} else {
			names = append(names, k)
		}
	}
	sort.Slice(indexes, func(i, j int) bool {
		a, _ := arrayIndex(indexes[i])
		b, _ := arrayIndex(indexes[j])
		return a < b
	})
	return append(indexes, names...)
}

// arrayIndex reports whether k is a canonical decimal below 2^32-1.
func arrayIndex(k string) (uint64, bool) {
	if k == "" || len(k) > 10 || (len(k) > 1 && k[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(k, 10, 64)
	if err != nil || n >= math.MaxUint32 {
		return 0, false
	}
	return n, true
}

const hex = "0123456789abcdef"

// writeString quotes s escaping only quote, backslash and control
// characters, as JSON.stringify does.
func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == '"':
			buf.WriteString(`\"`)
		case r == '\\':
			buf.WriteString(`\\`)
		case r == '\b':
			buf.WriteString(`\b`)
		case r == '\f':
			buf.WriteString(`\f`)
		case r == '\n':
			buf.WriteString(`\n`)
		case r == '\r':
			buf.WriteString(`\r`)
		case r == '\t':
			buf.WriteString(`\t`)
		case r < 0x20:
			buf.WriteString(`\u00`)
			buf.WriteByte(hex[r>>4])
			buf.WriteByte(hex[r&0xf])
		default:
			buf.WriteString(s[i : i+size])
		}
		i += size
	}
	buf.WriteByte('"')
}
