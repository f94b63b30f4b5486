package testutil

import (
	"github.com/google/uuid"
	"github.com/vk/gridflow/internal/inputs"
	"github.com/vk/gridflow/internal/nodeid"
)

var idSpace = uuid.MustParse("3b0f8d7e-1c55-4f0e-9a43-6d2f1e9b7c10")

// NodeID derives a stable node id from a readable name.
func NodeID(name string) nodeid.NodeID {
	return nodeid.NodeID(uuid.NewSHA1(idSpace, []byte("node:"+name)))
}

// EdgeID derives a stable edge id from a readable name.
func EdgeID(name string) nodeid.EdgeID {
	return nodeid.EdgeID(uuid.NewSHA1(idSpace, []byte("edge:"+name)))
}

// GraphBuilder assembles an inputs.Graph using names instead of ids.
type GraphBuilder struct {
	g *inputs.Graph
}

// NewGraphBuilder starts an empty graph.
func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{g: inputs.NewGraph()}
}

// Node adds n under the id derived from name.
func (b *GraphBuilder) Node(name string, n inputs.Node) *GraphBuilder {
	b.g.WithNode(NodeID(name), n)
	return b
}

// Edge links two named nodes. The edge id is derived from "tail->head".
func (b *GraphBuilder) Edge(tail, head string) *GraphBuilder {
	return b.EdgeWith(tail+"->"+head, inputs.Link(NodeID(tail), NodeID(head)))
}

// EdgeWith adds e under the id derived from name.
func (b *GraphBuilder) EdgeWith(name string, e inputs.Edge) *GraphBuilder {
	b.g.WithEdge(EdgeID(name), e)
	return b
}

// Build returns the assembled graph.
func (b *GraphBuilder) Build() *inputs.Graph {
	return b.g
}
