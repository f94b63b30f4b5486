package outputs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridflow/internal/fields"
	"github.com/vk/gridflow/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
)

func TestGraph_MergeAndOrdered(t *testing.T) {
	a, b, c := nodeid.NewNode(), nodeid.NewNode(), nodeid.NewNode()
	e := nodeid.NewEdge()

	var g Graph
	g.Merge(Delta{Nodes: map[nodeid.NodeID]Node{a: {Counter: 2}, b: {Counter: 1}}})
	g.Merge(Delta{
		Nodes: map[nodeid.NodeID]Node{c: {Counter: 3}, a: {Counter: 4}},
		Edges: map[nodeid.EdgeID]Edge{e: {}},
	})

	assert.Equal(t, []nodeid.NodeID{b, c, a}, g.Ordered())
	assert.Contains(t, g.Edges, e)
}

func TestGraph_JSONShape(t *testing.T) {
	a := nodeid.MustNode("00000000-0000-0000-0000-00000000000a")
	e := nodeid.MustEdge("00000000-0000-0000-0000-0000000000e1")

	g := NewGraph()
	g.Nodes[a] = Node{
		Counter: 1,
		Inputs:  fields.Fields{"msg": cty.StringVal("hi")},
		Outputs: fields.Fields{"len": cty.NumberIntVal(2)},
	}
	g.Edges[e] = Edge{}

	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"nodes": {"00000000-0000-0000-0000-00000000000a": {"counter": 1, "inputs": {"msg": "hi"}, "outputs": {"len": 2}}},
		"edges": {"00000000-0000-0000-0000-0000000000e1": {}}
	}`, string(data))
}
