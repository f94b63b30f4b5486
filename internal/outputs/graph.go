// Package outputs records what an execution produced: for every node that
// completed, the order in which it completed and the input and output
// fields it ran with.
package outputs

import (
	"sort"

	"github.com/vk/gridflow/internal/fields"
	"github.com/vk/gridflow/internal/nodeid"
)

// Node is the snapshot of one completed node. Counter is its position in the
// run's completion order, starting at 1.
type Node struct {
	Counter uint64        `json:"counter"`
	Inputs  fields.Fields `json:"inputs"`
	Outputs fields.Fields `json:"outputs"`
}

// Edge marks an edge whose head completed. It carries no payload yet.
type Edge struct{}

// Graph is the result of one execution.
type Graph struct {
	Nodes map[nodeid.NodeID]Node `json:"nodes"`
	Edges map[nodeid.EdgeID]Edge `json:"edges"`
}

// NewGraph returns an empty graph with allocated maps.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make(map[nodeid.NodeID]Node),
		Edges: make(map[nodeid.EdgeID]Edge),
	}
}

// Delta is a partial set of node and edge replacements.
type Delta struct {
	Nodes map[nodeid.NodeID]Node `json:"nodes,omitempty"`
	Edges map[nodeid.EdgeID]Edge `json:"edges,omitempty"`
}

// Merge applies a delta by overwriting entries with the same id.
func (g *Graph) Merge(d Delta) {
	if g.Nodes == nil {
		g.Nodes = make(map[nodeid.NodeID]Node, len(d.Nodes))
	}
	if g.Edges == nil {
		g.Edges = make(map[nodeid.EdgeID]Edge, len(d.Edges))
	}
	for id, n := range d.Nodes {
		g.Nodes[id] = n
	}
	for id, e := range d.Edges {
		g.Edges[id] = e
	}
}

// Ordered returns the recorded node ids sorted by completion counter.
func (g *Graph) Ordered() []nodeid.NodeID {
	ids := make([]nodeid.NodeID, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return g.Nodes[ids[i]].Counter < g.Nodes[ids[j]].Counter
	})
	return ids
}
