package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// record is one JSON object with its fields kept raw. Lookups are exact:
// "ID" is not "id".
type record map[string]json.RawMessage

// field decodes the named field into v. Numbers inside v stay json.Number.
// It reports false when the field is absent.
func (r record) field(name string, v any) (bool, error) {
	raw, ok := r[name]
	if !ok {
		return false, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return true, fmt.Errorf("field %q: %w", name, err)
	}
	return true, nil
}

// id decodes a required identifier field.
func (r record) id(name string) (ID, error) {
	var id ID
	ok, err := r.field(name, &id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("missing %q", name)
	}
	return id, nil
}

// DecodeGraph reads a GraphPayload. The body must be exactly one JSON
// object, and field names must match exactly. Property numbers keep their
// literal form (json.Number). A missing nodes/edges array, node id, node
// labels, or edge id/source/target is an error.
func DecodeGraph(r io.Reader) (*GraphPayload, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph payload: %w", err)
	}

	var top record
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("failed to decode graph payload: %w", err)
	}

	var rawNodes, rawEdges []record
	if ok, err := top.field("nodes", &rawNodes); err != nil {
		return nil, err
	} else if !ok || rawNodes == nil {
		return nil, fmt.Errorf("graph payload has no nodes array")
	}
	if ok, err := top.field("edges", &rawEdges); err != nil {
		return nil, err
	} else if !ok || rawEdges == nil {
		return nil, fmt.Errorf("graph payload has no edges array")
	}

	payload := &GraphPayload{
		Nodes: make([]NodeRecord, 0, len(rawNodes)),
		Edges: make([]EdgeRecord, 0, len(rawEdges)),
	}

	for i, n := range rawNodes {
		node, err := decodeNode(n)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		payload.Nodes = append(payload.Nodes, node)
	}

	for i, e := range rawEdges {
		edge, err := decodeEdge(e)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		payload.Edges = append(payload.Edges, edge)
	}

	return payload, nil
}

func decodeNode(r record) (NodeRecord, error) {
	if r == nil {
		return NodeRecord{}, fmt.Errorf("not an object")
	}
	var (
		n   NodeRecord
		err error
	)
	if n.ID, err = r.id("id"); err != nil {
		return n, err
	}
	if ok, err := r.field("labels", &n.Labels); err != nil {
		return n, err
	} else if !ok || n.Labels == nil {
		return n, fmt.Errorf("node %s has no labels", n.ID)
	}
	if _, err := r.field("properties", &n.Properties); err != nil {
		return n, err
	}
	return n, nil
}

func decodeEdge(r record) (EdgeRecord, error) {
	if r == nil {
		return EdgeRecord{}, fmt.Errorf("not an object")
	}
	var (
		e   EdgeRecord
		err error
	)
	if e.ID, err = r.id("id"); err != nil {
		return e, err
	}
	if e.Source, err = r.id("source"); err != nil {
		return e, fmt.Errorf("edge %s: %w", e.ID, err)
	}
	if e.Target, err = r.id("target"); err != nil {
		return e, fmt.Errorf("edge %s: %w", e.ID, err)
	}
	if _, err := r.field("type", &e.Type); err != nil {
		return e, err
	}
	if _, err := r.field("properties", &e.Properties); err != nil {
		return e, err
	}
	return e, nil
}

// DecodeList reads a ListPayload. The body must be a JSON array.
func DecodeList(r io.Reader) (ListPayload, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read list payload: %w", err)
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("list payload is not an array")
	}

	var list ListPayload
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, fmt.Errorf("failed to decode list payload: %w", err)
	}
	if list == nil {
		list = ListPayload{}
	}
	return list, nil
}
