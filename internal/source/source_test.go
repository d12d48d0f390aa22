package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	graphPath := filepath.Join(dir, "graph.json")
	listPath := filepath.Join(dir, "list.json")
	require.NoError(t, os.WriteFile(graphPath, []byte(`{"nodes":[{"id":1,"labels":["A"]}],"edges":[]}`), 0644))
	require.NoError(t, os.WriteFile(listPath, []byte(`["a","b"]`), 0644))

	src := NewFileSource(graphPath, listPath)
	defer src.Close(context.Background())

	payload, err := src.Graph(context.Background())
	require.NoError(t, err)
	assert.Len(t, payload.Nodes, 1)

	list, err := src.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = NewFileSource(filepath.Join(dir, "nope.json"), "").Graph(context.Background())
	assert.Error(t, err)
}

func TestGraphBuilder_Dedupes(t *testing.T) {
	alice := neo4j.Node{ElementId: "4:db:1", Labels: []string{"Person"}, Props: map[string]any{"name": "Alice"}}
	bob := neo4j.Node{ElementId: "4:db:2", Labels: []string{"Person"}, Props: map[string]any{"name": "Bob"}}
	lonely := neo4j.Node{ElementId: "4:db:3"}
	knows := neo4j.Relationship{
		ElementId:      "5:db:1",
		StartElementId: alice.ElementId,
		EndElementId:   bob.ElementId,
		Type:           "KNOWS",
		Props:          map[string]any{"since": int64(2020)},
	}

	b := newGraphBuilder()
	b.addNode(alice)
	b.addNode(bob)
	b.addEdge(knows)
	b.addNode(alice)
	b.addEdge(knows)
	b.addNode(lonely)

	out := b.payload()
	require.Len(t, out.Nodes, 3)
	require.Len(t, out.Edges, 1)
	assert.Equal(t, "4:db:1", out.Nodes[0].ID.String())
	assert.Equal(t, []string{}, out.Nodes[2].Labels)
	assert.Equal(t, "4:db:1", out.Edges[0].Source.String())
	assert.Equal(t, "4:db:2", out.Edges[0].Target.String())
	assert.Equal(t, "KNOWS", out.Edges[0].Type)
	assert.Equal(t, int64(2020), out.Edges[0].Properties["since"])
}

func TestNormalize(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	out := normalize(map[string]any{
		"when":  ts,
		"tags":  []any{"a", int64(1)},
		"name":  "x",
		"empty": nil,
	})

	m := out.(map[string]any)
	assert.Equal(t, "2024-01-02T03:04:05Z", m["when"])
	assert.Equal(t, []any{"a", int64(1)}, m["tags"])
	assert.Equal(t, "x", m["name"])
	assert.Nil(t, m["empty"])
}

func TestMarshalRaw_KeepsHTML(t *testing.T) {
	raw, err := marshalRaw("<b>")
	require.NoError(t, err)
	assert.Equal(t, `"<b>"`, string(raw))
}

func TestGraphBuilder_HidesSeedLabel(t *testing.T) {
	b := newGraphBuilder()
	b.addNode(neo4j.Node{ElementId: "4:db:9", Labels: []string{"Seeded", "Person"}})
	b.addNode(neo4j.Node{ElementId: "4:db:10", Labels: []string{"Seeded"}})

	out := b.payload()
	require.Len(t, out.Nodes, 2)
	assert.Equal(t, []string{"Person"}, out.Nodes[0].Labels)
	assert.Equal(t, []string{}, out.Nodes[1].Labels)
}
