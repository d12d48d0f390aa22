package loader

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"graphview/internal/graph"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// SeedKey is the node property that carries the payload id, so edges can be
// matched to the nodes loaded before them.
const SeedKey = "seed_id"

// SeedLabel is added to every seeded node. The seed_id constraint lives on
// it, so edge rows find their endpoints through the index.
const SeedLabel = "Seeded"

// Neo4jLoader handles batch loading of graph payloads into Neo4j.
type Neo4jLoader struct {
	Driver neo4j.DriverWithContext
	DBName string
}

// NewNeo4jLoader creates a new loader instance.
func NewNeo4jLoader(driver neo4j.DriverWithContext, dbName string) *Neo4jLoader {
	return &Neo4jLoader{
		Driver: driver,
		DBName: dbName,
	}
}

// Load writes every node, then every edge, of the payload.
func (l *Neo4jLoader) Load(ctx context.Context, payload *graph.GraphPayload) error {
	if err := l.ApplyConstraints(ctx); err != nil {
		return err
	}
	if err := l.BatchLoadNodes(ctx, payload.Nodes); err != nil {
		return err
	}
	return l.BatchLoadEdges(ctx, payload.Edges)
}

// BatchLoadNodes loads a batch of nodes using UNWIND.
func (l *Neo4jLoader) BatchLoadNodes(ctx context.Context, nodes []graph.NodeRecord) error {
	if len(nodes) == 0 {
		return nil
	}

	batches := groupNodesByLabels(nodes)

	session := l.Driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: l.DBName})
	defer session.Close(ctx)

	for _, key := range sortedKeys(batches) {
		query := buildNodeQuery(key)
		batch := batches[key]
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, query, map[string]any{"batch": batch})
		})
		if err != nil {
			return fmt.Errorf("failed to load nodes for labels %s: %w", key, err)
		}
	}

	return nil
}

// BatchLoadEdges loads a batch of edges using UNWIND.
func (l *Neo4jLoader) BatchLoadEdges(ctx context.Context, edges []graph.EdgeRecord) error {
	if len(edges) == 0 {
		return nil
	}

	batches := groupEdgesByType(edges)

	session := l.Driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: l.DBName})
	defer session.Close(ctx)

	for _, relType := range sortedKeys(batches) {
		query := buildEdgeQuery(relType)
		batch := batches[relType]
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, query, map[string]any{"batch": batch})
		})
		if err != nil {
			return fmt.Errorf("failed to load edges for type %s: %w", relType, err)
		}
	}

	return nil
}

// ApplyConstraints creates the seed_id uniqueness constraint, which also
// backs the index edge rows match on.
func (l *Neo4jLoader) ApplyConstraints(ctx context.Context) error {
	session := l.Driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: l.DBName})
	defer session.Close(ctx)

	query := buildConstraintQuery()
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, nil)
	})
	if err != nil {
		return fmt.Errorf("failed to apply constraint '%s': %w", query, err)
	}
	return nil
}

// Wipe deletes all data from the database.
func (l *Neo4jLoader) Wipe(ctx context.Context) error {
	session := l.Driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: l.DBName})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, buildWipeQuery(), nil)
	})
	return err
}

// Helpers extracted for testing

// groupNodesByLabels batches nodes by their label set. The key is the
// sanitized labels joined with ":", empty for unlabelled nodes.
func groupNodesByLabels(nodes []graph.NodeRecord) map[string][]map[string]any {
	batches := make(map[string][]map[string]any)
	for _, n := range nodes {
		labels := make([]string, 0, len(n.Labels))
		for _, label := range n.Labels {
			if s := sanitizeLabel(label); s != "" {
				labels = append(labels, s)
			}
		}
		sort.Strings(labels)
		key := strings.Join(labels, ":")

		props := make(map[string]any, len(n.Properties))
		for k, v := range n.Properties {
			props[k] = plainValue(v)
		}

		batches[key] = append(batches[key], map[string]any{
			"id":    n.ID.String(),
			"props": props,
		})
	}
	return batches
}

func buildNodeQuery(labelKey string) string {
	set := "SET n += row.props"
	if labelKey != "" {
		parts := strings.Split(labelKey, ":")
		for i, p := range parts {
			parts[i] = "`" + p + "`"
		}
		set = "SET n:" + strings.Join(parts, ":") + ", n += row.props"
	}
	return fmt.Sprintf(`
			UNWIND $batch AS row
			MERGE (n:%s {%s: row.id})
			%s
		`, SeedLabel, SeedKey, set)
}

func groupEdgesByType(edges []graph.EdgeRecord) map[string][]map[string]any {
	batches := make(map[string][]map[string]any)
	for _, e := range edges {
		relType := sanitizeLabel(e.Type)
		if relType == "" {
			relType = "RELATED_TO"
		}

		props := make(map[string]any, len(e.Properties))
		for k, v := range e.Properties {
			props[k] = plainValue(v)
		}

		batches[relType] = append(batches[relType], map[string]any{
			"sourceId": e.Source.String(),
			"targetId": e.Target.String(),
			"props":    props,
		})
	}
	return batches
}

func buildEdgeQuery(relType string) string {
	return fmt.Sprintf(`
			UNWIND $batch AS row
			MATCH (source:%[3]s {%[1]s: row.sourceId})
			MATCH (target:%[3]s {%[1]s: row.targetId})
			MERGE (source)-[r:`+"`%[2]s`"+`]->(target)
			SET r += row.props
		`, SeedKey, relType, SeedLabel)
}

func buildConstraintQuery() string {
	return fmt.Sprintf("CREATE CONSTRAINT IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE", SeedLabel, SeedKey)
}

func buildWipeQuery() string {
	return "MATCH (n) DETACH DELETE n"
}

func sanitizeLabel(label string) string {
	return strings.ReplaceAll(label, "`", "")
}

func sortedKeys(m map[string][]map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
