package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"graphview/internal/config"
	"graphview/internal/graph"
	"graphview/internal/loader"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// graphQuery returns every relationship with its endpoints, plus nodes that
// have no relationships at all.
const graphQuery = `
	MATCH (n)-[r]->(m)
	RETURN n, r, m
	UNION
	MATCH (n)
	WHERE NOT (n)--()
	RETURN n, null AS r, null AS m
`

// Neo4jSource implements Source using the official Neo4j Go driver.
type Neo4jSource struct {
	driver    neo4j.DriverWithContext
	database  string
	listQuery string
}

// NewNeo4jSource creates a new connection to Neo4j.
func NewNeo4jSource(ctx context.Context, cfg config.Config) (*Neo4jSource, error) {
	auth := neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, "")

	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to verify connectivity to neo4j: %w", err)
	}

	return &Neo4jSource{
		driver:    driver,
		database:  cfg.Neo4jDatabase,
		listQuery: cfg.ListQuery,
	}, nil
}

// Driver exposes the underlying driver, e.g. for seeding.
func (s *Neo4jSource) Driver() neo4j.DriverWithContext { return s.driver }

// Close closes the Neo4j driver connection.
func (s *Neo4jSource) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Neo4jSource) run(ctx context.Context, query string) (*neo4j.EagerResult, error) {
	return neo4j.ExecuteQuery(ctx, s.driver, query, nil,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database),
		neo4j.ExecuteQueryWithReadersRouting())
}

// Graph returns all nodes and relationships, deduplicated by element id.
func (s *Neo4jSource) Graph(ctx context.Context) (*graph.GraphPayload, error) {
	result, err := s.run(ctx, graphQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to execute graph query: %w", err)
	}

	b := newGraphBuilder()
	for _, record := range result.Records {
		n, _, err := neo4j.GetRecordValue[neo4j.Node](record, "n")
		if err != nil {
			return nil, fmt.Errorf("failed to read start node: %w", err)
		}
		b.addNode(n)

		m, isNil, err := neo4j.GetRecordValue[neo4j.Node](record, "m")
		if err != nil {
			return nil, fmt.Errorf("failed to read end node: %w", err)
		}
		if isNil {
			continue
		}
		b.addNode(m)

		r, _, err := neo4j.GetRecordValue[neo4j.Relationship](record, "r")
		if err != nil {
			return nil, fmt.Errorf("failed to read relationship: %w", err)
		}
		b.addEdge(r)
	}

	return b.payload(), nil
}

// List runs the configured list query. Single-column rows yield that value,
// wider rows yield an object keyed by column.
func (s *Neo4jSource) List(ctx context.Context) (graph.ListPayload, error) {
	result, err := s.run(ctx, s.listQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to execute list query: %w", err)
	}

	list := make(graph.ListPayload, 0, len(result.Records))
	for _, record := range result.Records {
		var row any
		if len(record.Keys) == 1 {
			row = normalize(record.Values[0])
		} else {
			row = normalize(record.AsMap())
		}
		raw, err := marshalRaw(row)
		if err != nil {
			return nil, fmt.Errorf("failed to encode list row: %w", err)
		}
		list = append(list, raw)
	}
	return list, nil
}

type graphBuilder struct {
	seen  map[string]bool
	edges map[string]bool
	out   *graph.GraphPayload
}

func newGraphBuilder() *graphBuilder {
	return &graphBuilder{
		seen:  make(map[string]bool),
		edges: make(map[string]bool),
		out:   &graph.GraphPayload{Nodes: []graph.NodeRecord{}, Edges: []graph.EdgeRecord{}},
	}
}

func (b *graphBuilder) addNode(n neo4j.Node) {
	if b.seen[n.ElementId] {
		return
	}
	b.seen[n.ElementId] = true

	// The seed label is bookkeeping, not part of the data.
	labels := make([]string, 0, len(n.Labels))
	for _, l := range n.Labels {
		if l != loader.SeedLabel {
			labels = append(labels, l)
		}
	}
	b.out.Nodes = append(b.out.Nodes, graph.NodeRecord{
		ID:         graph.ID(n.ElementId),
		Labels:     labels,
		Properties: normalizeProps(n.Props),
	})
}

func (b *graphBuilder) addEdge(r neo4j.Relationship) {
	if b.edges[r.ElementId] {
		return
	}
	b.edges[r.ElementId] = true

	b.out.Edges = append(b.out.Edges, graph.EdgeRecord{
		ID:         graph.ID(r.ElementId),
		Source:     graph.ID(r.StartElementId),
		Target:     graph.ID(r.EndElementId),
		Type:       r.Type,
		Properties: normalizeProps(r.Props),
	})
}

func (b *graphBuilder) payload() *graph.GraphPayload { return b.out }

func normalizeProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = normalize(v)
	}
	return out
}

// normalize converts driver values into JSON-friendly ones. Temporal and
// spatial types become their string form.
func normalize(v any) any {
	switch t := v.(type) {
	case nil, bool, int64, float64, string:
		return t
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalize(item)
		}
		return out
	case map[string]any:
		return normalizeProps(t)
	case neo4j.Node:
		return map[string]any{"id": t.ElementId, "labels": t.Labels, "properties": normalizeProps(t.Props)}
	case neo4j.Relationship:
		return map[string]any{"id": t.ElementId, "type": t.Type, "properties": normalizeProps(t.Props)}
	case fmt.Stringer:
		return t.String()
	}
	return v
}

func marshalRaw(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
