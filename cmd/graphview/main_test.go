package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const graphBody = `{
	"nodes": [
		{"id": 1, "labels": ["Person"], "properties": {"name": "Alice"}},
		{"id": 2, "labels": ["Person"], "properties": {"name": "Bob"}}
	],
	"edges": [
		{"id": 10, "source": 1, "target": 2, "type": "KNOWS", "properties": {"since": 2020}}
	]
}`

func endpoint(t *testing.T, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd(&stdout, &stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRenderGraph_JSON(t *testing.T) {
	url := endpoint(t, graphBody)

	out, _, err := execute(t, "render", "graph", "--graph-endpoint", url)
	require.NoError(t, err)

	var els []map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &els))
	require.Len(t, els, 3)
	assert.Equal(t, "1", els[0]["data"]["id"])
	assert.Equal(t, "Person", els[0]["data"]["label"])
	assert.Equal(t, "edge-10", els[2]["data"]["id"])
	assert.Equal(t, "KNOWS", els[2]["data"]["label"])
}

func TestRenderGraph_JSONL(t *testing.T) {
	url := endpoint(t, graphBody)

	out, _, err := execute(t, "render", "graph", "--graph-endpoint", url, "--format", "jsonl")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[2], `"source":"1"`)
}

func TestRenderGraph_Split(t *testing.T) {
	url := endpoint(t, graphBody)
	dir := t.TempDir()
	nodes := filepath.Join(dir, "nodes.jsonl")
	edges := filepath.Join(dir, "edges.jsonl")

	_, _, err := execute(t, "render", "graph", "--graph-endpoint", url, "--nodes", nodes, "--edges", edges)
	require.NoError(t, err)

	nodeData, err := os.ReadFile(nodes)
	require.NoError(t, err)
	edgeData, err := os.ReadFile(edges)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(nodeData), "\n"))
	assert.Equal(t, 1, strings.Count(string(edgeData), "\n"))
	assert.Contains(t, string(edgeData), `"id":"edge-10"`)
}

func TestRenderGraph_SplitNeedsBoth(t *testing.T) {
	_, _, err := execute(t, "render", "graph", "--nodes", "nodes.jsonl")
	assert.Error(t, err)
}

func TestRenderGraph_Failure(t *testing.T) {
	url := endpoint(t, `<html>oops</html>`)

	out, logs, err := execute(t, "render", "graph", "--graph-endpoint", url)
	assert.ErrorIs(t, err, errRender)
	assert.Equal(t, "<p>Error loading graph data.</p>\n", out)
	assert.Contains(t, logs, "Error fetching graph data")
}

func TestRenderGraph_OverwritePolicy(t *testing.T) {
	url := endpoint(t, `{"nodes":[{"id":1,"labels":["A"],"properties":{"label":"mine"}}],"edges":[]}`)

	out, _, err := execute(t, "render", "graph", "--graph-endpoint", url, "--reserved-keys", "overwrite")
	require.NoError(t, err)
	assert.Contains(t, out, `"label": "mine"`)

	out, logs, err := execute(t, "render", "graph", "--graph-endpoint", url)
	require.NoError(t, err)
	assert.Contains(t, out, `"label": "A"`)
	assert.Contains(t, logs, "property collides with reserved key")
}

func TestRenderList(t *testing.T) {
	url := endpoint(t, `[{"b":1,"a":"<x>"}, 3, "s"]`)

	out, _, err := execute(t, "render", "list", "--list-endpoint", url)
	require.NoError(t, err)
	assert.Equal(t, "{\"b\":1,\"a\":\"<x>\"}\n3\n\"s\"\n", out)
}

func TestRenderList_Empty(t *testing.T) {
	url := endpoint(t, `[]`)

	out, _, err := execute(t, "render", "list", "--list-endpoint", url)
	require.NoError(t, err)
	assert.Equal(t, "<p>No data available.</p>\n", out)
}

func TestRenderList_Failure(t *testing.T) {
	url := endpoint(t, `{"not":"a list"}`)

	out, logs, err := execute(t, "render", "list", "--list-endpoint", url)
	assert.ErrorIs(t, err, errRender)
	assert.Equal(t, "<p>Error loading data.</p>\n", out)
	assert.Contains(t, logs, "Error fetching data")
}

func TestSeed_RequiresNeo4jURI(t *testing.T) {
	t.Setenv("NEO4J_URI", "")

	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, os.WriteFile(path, []byte(graphBody), 0644))

	_, _, err := execute(t, "seed", path)
	assert.ErrorContains(t, err, "NEO4J_URI")
}

func TestServe_BadPolicy(t *testing.T) {
	_, _, err := execute(t, "serve", "--source", "file", "--reserved-keys", "bogus")
	assert.Error(t, err)
}
