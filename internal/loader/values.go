package loader

import (
	"encoding/json"
)

// plainValue converts a decoded JSON value into something Neo4j can store as
// a property. Numbers become int64 or float64; nested objects, which Neo4j
// properties cannot hold, are stored as their JSON text.
func plainValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plainValue(item)
		}
		return out
	case map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return nil
		}
		return string(b)
	}
	return v
}
