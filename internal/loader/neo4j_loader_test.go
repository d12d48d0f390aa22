package loader

import (
	"encoding/json"
	"strings"
	"testing"

	"graphview/internal/graph"
)

func TestBuildNodeQuery(t *testing.T) {
	query := buildNodeQuery("Employee:Person")
	if !strings.Contains(query, "UNWIND $batch AS row") {
		t.Error("Missing UNWIND clause")
	}
	if !strings.Contains(query, "MERGE (n:Seeded {seed_id: row.id})") {
		t.Errorf("Missing MERGE on the seed label: %s", query)
	}
	if !strings.Contains(query, "SET n:`Employee`:`Person`, n += row.props") {
		t.Errorf("Missing label and property SET: %s", query)
	}
}

func TestBuildNodeQuery_Unlabelled(t *testing.T) {
	query := buildNodeQuery("")
	if !strings.Contains(query, "MERGE (n:Seeded {seed_id: row.id})") {
		t.Errorf("Unexpected query for unlabelled nodes: %s", query)
	}
	if strings.Contains(query, "SET n:") {
		t.Errorf("Unlabelled nodes get no extra labels: %s", query)
	}
}

func TestBuildEdgeQuery(t *testing.T) {
	query := buildEdgeQuery("KNOWS")
	if !strings.Contains(query, "UNWIND $batch AS row") {
		t.Error("Missing UNWIND clause")
	}
	if !strings.Contains(query, "MATCH (source:Seeded {seed_id: row.sourceId})") {
		t.Errorf("Missing indexed source match: %s", query)
	}
	if !strings.Contains(query, "MATCH (target:Seeded {seed_id: row.targetId})") {
		t.Errorf("Missing indexed target match: %s", query)
	}
	if !strings.Contains(query, "MERGE (source)-[r:`KNOWS`]->(target)") {
		t.Errorf("Missing MERGE clause with correct type: %s", query)
	}
}

func TestGroupNodesByLabels(t *testing.T) {
	nodes := []graph.NodeRecord{
		{ID: "1", Labels: []string{"Person"}, Properties: map[string]any{"name": "a"}},
		{ID: "2", Labels: []string{"Person"}, Properties: map[string]any{"name": "b"}},
		{ID: "3", Labels: []string{"Person", "Employee"}},
		{ID: "4", Labels: []string{"Employee", "Person"}},
		{ID: "5", Labels: []string{}},
		{ID: "6", Labels: []string{"Bad`Label"}},
	}

	batches := groupNodesByLabels(nodes)
	if len(batches) != 4 {
		t.Errorf("Expected 4 label sets, got %d", len(batches))
	}
	if len(batches["Person"]) != 2 {
		t.Errorf("Expected 2 Person nodes, got %d", len(batches["Person"]))
	}
	if len(batches["Employee:Person"]) != 2 {
		t.Errorf("Expected 2 Employee:Person nodes, got %d", len(batches["Employee:Person"]))
	}
	if len(batches[""]) != 1 {
		t.Errorf("Expected 1 unlabelled node, got %d", len(batches[""]))
	}
	if len(batches["BadLabel"]) != 1 {
		t.Errorf("Expected backticks to be stripped, got %v", batches)
	}
	if batches["Person"][0]["id"] != "1" {
		t.Errorf("Expected id 1, got %v", batches["Person"][0]["id"])
	}
}

func TestGroupEdgesByType(t *testing.T) {
	edges := []graph.EdgeRecord{
		{ID: "1", Source: "1", Target: "2", Type: "KNOWS"},
		{ID: "2", Source: "2", Target: "3", Type: ""},
	}

	batches := groupEdgesByType(edges)
	if len(batches["KNOWS"]) != 1 || len(batches["RELATED_TO"]) != 1 {
		t.Errorf("Unexpected batches: %v", batches)
	}
	if batches["KNOWS"][0]["sourceId"] != "1" || batches["KNOWS"][0]["targetId"] != "2" {
		t.Errorf("Unexpected row: %v", batches["KNOWS"][0])
	}
}

func TestPlainValue(t *testing.T) {
	if v := plainValue(json.Number("42")); v != int64(42) {
		t.Errorf("Expected int64 42, got %#v", v)
	}
	if v := plainValue(json.Number("1.5")); v != 1.5 {
		t.Errorf("Expected 1.5, got %#v", v)
	}
	if v := plainValue(map[string]any{"a": json.Number("1")}); v != `{"a":1}` {
		t.Errorf("Expected nested object as JSON text, got %#v", v)
	}
	list := plainValue([]any{json.Number("2"), "x"}).([]any)
	if list[0] != int64(2) || list[1] != "x" {
		t.Errorf("Unexpected list %#v", list)
	}
}

func TestBuildWipeQuery(t *testing.T) {
	query := buildWipeQuery()
	if !strings.Contains(query, "MATCH (n) DETACH DELETE n") {
		t.Error("Missing DETACH DELETE clause")
	}
}

func TestBuildConstraintQuery(t *testing.T) {
	query := buildConstraintQuery()
	want := "CREATE CONSTRAINT IF NOT EXISTS FOR (n:Seeded) REQUIRE n.seed_id IS UNIQUE"
	if query != want {
		t.Errorf("Expected %q, got %q", want, query)
	}
}
