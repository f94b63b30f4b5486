package dag

import (
	"errors"
	"fmt"

	"github.com/vk/gridflow/internal/nodeid"
)

// ErrNodeOutOfRange is returned when an edge endpoint is not a node index of
// the graph.
var ErrNodeOutOfRange = errors.New("dag: node index out of range")

// Graph is an index-addressed directed graph of Nodes and Edges.
type Graph struct {
	nodes    []Node
	edges    []Edge
	outgoing [][]int
	incoming [][]int
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{}
}

// AddNode appends a node and returns its index.
func (g *Graph) AddNode(n Node) int {
	g.nodes = append(g.nodes, n)
	g.outgoing = append(g.outgoing, nil)
	g.incoming = append(g.incoming, nil)
	return len(g.nodes) - 1
}

// AddEdge appends an edge between two existing nodes and returns its index.
func (g *Graph) AddEdge(e Edge) (int, error) {
	if !g.hasNode(e.Tail) {
		return -1, fmt.Errorf("%w: tail %d of edge %s", ErrNodeOutOfRange, e.Tail, e.InputID)
	}
	if !g.hasNode(e.Head) {
		return -1, fmt.Errorf("%w: head %d of edge %s", ErrNodeOutOfRange, e.Head, e.InputID)
	}
	g.edges = append(g.edges, e)
	idx := len(g.edges) - 1
	g.outgoing[e.Tail] = append(g.outgoing[e.Tail], idx)
	g.incoming[e.Head] = append(g.incoming[e.Head], idx)
	return idx, nil
}

func (g *Graph) hasNode(i int) bool { return i >= 0 && i < len(g.nodes) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Node returns the node at index i. It panics if i is out of range.
func (g *Graph) Node(i int) Node { return g.nodes[i] }

// Edge returns the edge at index i. It panics if i is out of range.
func (g *Graph) Edge(i int) Edge { return g.edges[i] }

// Outgoing returns the indices of edges leaving node i.
func (g *Graph) Outgoing(i int) []int { return g.outgoing[i] }

// Incoming returns the indices of edges entering node i.
func (g *Graph) Incoming(i int) []int { return g.incoming[i] }

// Children returns the heads of the edges leaving node i, in edge order.
// A child reached by several parallel edges appears once per edge.
func (g *Graph) Children(i int) []int {
	out := make([]int, 0, len(g.outgoing[i]))
	for _, e := range g.outgoing[i] {
		out = append(out, g.edges[e].Head)
	}
	return out
}

// Parents returns the tails of the edges entering node i, in edge order.
func (g *Graph) Parents(i int) []int {
	out := make([]int, 0, len(g.incoming[i]))
	for _, e := range g.incoming[i] {
		out = append(out, g.edges[e].Tail)
	}
	return out
}

// Roots returns the indices of nodes without incoming edges, ascending.
func (g *Graph) Roots() []int {
	var out []int
	for i := range g.nodes {
		if len(g.incoming[i]) == 0 {
			out = append(out, i)
		}
	}
	return out
}

// IndexOf returns the index of the node lowered from the given input node.
func (g *Graph) IndexOf(id nodeid.NodeID) (int, bool) {
	for i, n := range g.nodes {
		if n.InputID == id {
			return i, true
		}
	}
	return -1, false
}

// From returns the graph made of start and every node reachable from it,
// with the edges among them. Nodes keep their relative order. Edges from
// nodes outside the result are dropped, so start becomes a root.
func (g *Graph) From(start int) (*Graph, error) {
	if !g.hasNode(start) {
		return nil, fmt.Errorf("%w: start %d", ErrNodeOutOfRange, start)
	}

	keep := make([]bool, len(g.nodes))
	keep[start] = true
	stack := []int{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range g.outgoing[n] {
			if head := g.edges[e].Head; !keep[head] {
				keep[head] = true
				stack = append(stack, head)
			}
		}
	}

	sub := New()
	remap := make([]int, len(g.nodes))
	for i, n := range g.nodes {
		if keep[i] {
			remap[i] = sub.AddNode(n)
		}
	}
	for _, e := range g.edges {
		if !keep[e.Tail] || !keep[e.Head] {
			continue
		}
		e.Tail, e.Head = remap[e.Tail], remap[e.Head]
		if _, err := sub.AddEdge(e); err != nil {
			return nil, err
		}
	}
	return sub, nil
}

// Validate checks the arena's internal consistency. A graph built only with
// AddNode and AddEdge always validates.
func (g *Graph) Validate() error {
	if len(g.outgoing) != len(g.nodes) || len(g.incoming) != len(g.nodes) {
		return fmt.Errorf("dag: adjacency lists cover %d/%d nodes, have %d", len(g.outgoing), len(g.incoming), len(g.nodes))
	}
	for i, e := range g.edges {
		if !g.hasNode(e.Tail) || !g.hasNode(e.Head) {
			return fmt.Errorf("%w: edge %d (%d -> %d)", ErrNodeOutOfRange, i, e.Tail, e.Head)
		}
	}
	return nil
}

// BackEdges returns the indices of edges that close a cycle, found by a
// depth-first search started from each unvisited node in index order. The
// graph is acyclic exactly when the result is empty. Self-loops are back
// edges.
func (g *Graph) BackEdges() []int {
	const (
		unvisited = iota
		visiting
		visited
	)
	state := make([]int, len(g.nodes))
	var back []int

	var visit func(n int)
	visit = func(n int) {
		state[n] = visiting
		for _, e := range g.outgoing[n] {
			head := g.edges[e].Head
			switch state[head] {
			case visiting:
				back = append(back, e)
			case unvisited:
				visit(head)
			}
		}
		state[n] = visited
	}

	for i := range g.nodes {
		if state[i] == unvisited {
			visit(i)
		}
	}
	return back
}
