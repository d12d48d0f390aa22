// Package elements maps graph payloads to Cytoscape.js elements.
package elements

import (
	"fmt"
	"strings"

	"graphview/internal/graph"
)

// EdgeIDPrefix keeps edge ids apart from node ids in the shared id space.
const EdgeIDPrefix = "edge-"

// Element is a single Cytoscape.js element. Edges carry source and target in
// Data; nodes do not.
type Element struct {
	Data map[string]any `json:"data"`
}

// IsEdge reports whether the element describes an edge.
func (e Element) IsEdge() bool {
	_, hasSource := e.Data["source"]
	_, hasTarget := e.Data["target"]
	return hasSource && hasTarget
}

// ID returns the element id as a string.
func (e Element) ID() string {
	return fmt.Sprint(e.Data["id"])
}

// Policy decides what happens when a property key matches a structural key.
type Policy string

const (
	// Guard keeps structural fields and drops the colliding property.
	Guard Policy = "guard"
	// Overwrite lets properties replace structural fields.
	Overwrite Policy = "overwrite"
)

// ParsePolicy accepts "guard" or "overwrite". Empty means Guard.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", Guard:
		return Guard, nil
	case Overwrite:
		return Overwrite, nil
	}
	return "", fmt.Errorf("unknown reserved key policy %q (want guard or overwrite)", s)
}

// ReservedKeys are the structural element fields.
var ReservedKeys = []string{"id", "source", "target", "label"}

func isReserved(key string) bool {
	for _, k := range ReservedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Collision records a property that matched a reserved key.
type Collision struct {
	ElementID string
	Key       string
}

func (c Collision) String() string {
	return fmt.Sprintf("%s.%s", c.ElementID, c.Key)
}

// Mapper turns payloads into element lists.
type Mapper struct {
	Policy Policy
}

// NewMapper creates a Mapper for the given policy.
func NewMapper(policy Policy) *Mapper {
	return &Mapper{Policy: policy}
}

// Build returns one element per node followed by one element per edge, in
// payload order. Under Guard, dropped properties are returned as collisions;
// under Overwrite, applied overwrites are returned.
func (m *Mapper) Build(payload *graph.GraphPayload) ([]Element, []Collision) {
	out := make([]Element, 0, len(payload.Nodes)+len(payload.Edges))
	var collisions []Collision

	for _, n := range payload.Nodes {
		data := map[string]any{
			"id":    n.ID.String(),
			"label": strings.Join(n.Labels, ", "),
		}
		collisions = m.merge(data, n.ID.String(), n.Properties, collisions)
		out = append(out, Element{Data: data})
	}

	for _, e := range payload.Edges {
		id := EdgeIDPrefix + e.ID.String()
		data := map[string]any{
			"id":     id,
			"source": e.Source.String(),
			"target": e.Target.String(),
			"label":  e.Type,
		}
		collisions = m.merge(data, id, e.Properties, collisions)
		out = append(out, Element{Data: data})
	}

	return out, collisions
}

func (m *Mapper) merge(data map[string]any, elementID string, props map[string]any, collisions []Collision) []Collision {
	for k, v := range props {
		if isReserved(k) {
			collisions = append(collisions, Collision{ElementID: elementID, Key: k})
			if m.Policy != Overwrite {
				continue
			}
		}
		data[k] = v
	}
	return collisions
}

// Split separates nodes from edges.
func Split(els []Element) (nodes, edges []Element) {
	for _, el := range els {
		if el.IsEdge() {
			edges = append(edges, el)
		} else {
			nodes = append(nodes, el)
		}
	}
	return nodes, edges
}
