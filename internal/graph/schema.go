package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is a node or edge identifier. The wire form may be a JSON string or a
// JSON number; both are kept in string form.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return fmt.Errorf("empty identifier")
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	case 'n':
		return fmt.Errorf("identifier is null")
	case 't', 'f':
		*id = ID(b)
		return nil
	case '{', '[':
		return fmt.Errorf("identifier must be a string or number, got %s", b)
	}
	s, err := canonicalNumber(string(b))
	if err != nil {
		return fmt.Errorf("invalid identifier %s: %w", b, err)
	}
	*id = ID(s)
	return nil
}

func (id ID) String() string { return string(id) }

// canonicalNumber renders a JSON number the way a browser stringifies it,
// so 1, 1.0 and 1e0 all become "1" and 1e21 becomes "1e+21".
func canonicalNumber(lit string) (string, error) {
	f, err := ParseNumber(lit)
	if err != nil {
		return "", err
	}
	return FormatNumber(f), nil
}

// NodeRecord is a node as served by the data endpoint.
type NodeRecord struct {
	ID         ID             `json:"id"`
	Labels     []string       `json:"labels"`
	Properties map[string]any `json:"properties"`
}

// EdgeRecord is a relationship as served by the data endpoint.
type EdgeRecord struct {
	ID         ID             `json:"id"`
	Source     ID             `json:"source"`
	Target     ID             `json:"target"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

// GraphPayload is the body of the graph data endpoint.
type GraphPayload struct {
	Nodes []NodeRecord `json:"nodes"`
	Edges []EdgeRecord `json:"edges"`
}

// ListPayload is the body of the list data endpoint. Entries stay raw so
// their original key order survives re-serialization.
type ListPayload []json.RawMessage
