package elements

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"graphview/internal/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body string) *graph.GraphPayload {
	t.Helper()
	payload, err := graph.DecodeGraph(strings.NewReader(body))
	require.NoError(t, err)
	return payload
}

func TestBuild_SingleNode(t *testing.T) {
	payload := decode(t, `{"nodes":[{"id":1,"labels":["Person"],"properties":{"name":"Alice"}}],"edges":[]}`)

	els, collisions := NewMapper(Guard).Build(payload)
	require.Len(t, els, 1)
	assert.Empty(t, collisions)

	out, err := json.Marshal(els[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"id":"1","label":"Person","name":"Alice"}}`, string(out))
}

func TestBuild_OrderAndCounts(t *testing.T) {
	var nodes, edges []string
	for i := 0; i < 5; i++ {
		nodes = append(nodes, fmt.Sprintf(`{"id":%d,"labels":["N"]}`, i))
	}
	for i := 0; i < 3; i++ {
		edges = append(edges, fmt.Sprintf(`{"id":%d,"source":%d,"target":%d,"type":"LINK"}`, i, i, i+1))
	}
	payload := decode(t, `{"nodes":[`+strings.Join(nodes, ",")+`],"edges":[`+strings.Join(edges, ",")+`]}`)

	els, _ := NewMapper(Guard).Build(payload)
	require.Len(t, els, 8)

	for i := 0; i < 5; i++ {
		assert.Equal(t, fmt.Sprint(i), els[i].ID())
		assert.False(t, els[i].IsEdge())
	}
	for i := 0; i < 3; i++ {
		el := els[5+i]
		assert.Equal(t, fmt.Sprintf("edge-%d", i), el.ID())
		assert.True(t, el.IsEdge())
		assert.Equal(t, "LINK", el.Data["label"])
	}
}

func TestBuild_Labels(t *testing.T) {
	payload := decode(t, `{"nodes":[
		{"id":"a","labels":["Person","Employee"]},
		{"id":"b","labels":[]}
	],"edges":[]}`)

	els, _ := NewMapper(Guard).Build(payload)
	assert.Equal(t, "Person, Employee", els[0].Data["label"])
	assert.Equal(t, "", els[1].Data["label"])
}

func TestBuild_EdgeEndpointsAreStrings(t *testing.T) {
	payload := decode(t, `{"nodes":[],"edges":[{"id":9,"source":10,"target":11,"type":"R"}]}`)

	els, _ := NewMapper(Guard).Build(payload)
	require.Len(t, els, 1)
	assert.Equal(t, "10", els[0].Data["source"])
	assert.Equal(t, "11", els[0].Data["target"])
	assert.Equal(t, "edge-9", els[0].Data["id"])
}

func TestBuild_EdgeProperties(t *testing.T) {
	payload := decode(t, `{"nodes":[],"edges":[{"id":1,"source":1,"target":2,"type":"KNOWS","properties":{"since":2020}}]}`)

	els, _ := NewMapper(Guard).Build(payload)
	out, err := json.Marshal(els)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"data":{"id":"edge-1","source":"1","target":"2","label":"KNOWS","since":2020}}]`, string(out))
}

func TestBuild_ReservedKeyPolicy(t *testing.T) {
	body := `{"nodes":[{"id":1,"labels":["Person"],"properties":{"id":"x","label":"Boss","name":"Bob"}}],
		"edges":[{"id":2,"source":1,"target":1,"type":"SELF","properties":{"target":"elsewhere"}}]}`

	t.Run("guard", func(t *testing.T) {
		els, collisions := NewMapper(Guard).Build(decode(t, body))
		assert.Equal(t, "1", els[0].Data["id"])
		assert.Equal(t, "Person", els[0].Data["label"])
		assert.Equal(t, "Bob", els[0].Data["name"])
		assert.Equal(t, "1", els[1].Data["target"])
		assert.ElementsMatch(t, []Collision{
			{ElementID: "1", Key: "id"},
			{ElementID: "1", Key: "label"},
			{ElementID: "edge-2", Key: "target"},
		}, collisions)
	})

	t.Run("overwrite", func(t *testing.T) {
		els, collisions := NewMapper(Overwrite).Build(decode(t, body))
		assert.Equal(t, "x", els[0].Data["id"])
		assert.Equal(t, "Boss", els[0].Data["label"])
		assert.Equal(t, "elsewhere", els[1].Data["target"])
		assert.Len(t, collisions, 3)
	})
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, Guard, p)

	p, err = ParsePolicy("Overwrite")
	require.NoError(t, err)
	assert.Equal(t, Overwrite, p)

	_, err = ParsePolicy("merge")
	assert.Error(t, err)
}

func TestSplit(t *testing.T) {
	payload := decode(t, `{"nodes":[{"id":1,"labels":[]},{"id":2,"labels":[]}],"edges":[{"id":1,"source":1,"target":2}]}`)
	els, _ := NewMapper(Guard).Build(payload)

	nodes, edges := Split(els)
	assert.Len(t, nodes, 2)
	assert.Len(t, edges, 1)
}

func TestStylesheet(t *testing.T) {
	rules := Stylesheet()
	require.Len(t, rules, 2)
	assert.Equal(t, "node", rules[0].Selector)
	assert.Equal(t, "data(label)", rules[0].Style["label"])
	assert.Equal(t, "triangle", rules[1].Style["target-arrow-shape"])
	assert.Equal(t, Layout{Name: "cose", Padding: 10}, ForceLayout())
}
