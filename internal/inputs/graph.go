package inputs

import (
	"github.com/vk/gridflow/internal/fields"
	"github.com/vk/gridflow/internal/nodeid"
)

// Kind selects the variant of a Node.
type Kind string

const (
	// KindManual is a trigger fired by an explicit request.
	KindManual Kind = "trigger:self"
	// KindSchedule is a trigger fired on a cron schedule.
	KindSchedule Kind = "trigger:cron"
	// KindWebhook is a trigger fired by an incoming webhook.
	KindWebhook Kind = "trigger:hook"
	// KindAction dispatches a registered task.
	KindAction Kind = "action"
)

// IsTrigger reports whether the kind is one of the trigger variants.
func (k Kind) IsTrigger() bool {
	return k == KindManual || k == KindSchedule || k == KindWebhook
}

// Node is a single trigger or action in a user graph. Only the payload field
// matching Kind is meaningful.
type Node struct {
	Priority *uint32       `json:"priority,omitempty"`
	Kind     Kind          `json:"kind"`
	Cron     string        `json:"cron,omitempty"`
	Hook     string        `json:"hook,omitempty"`
	Task     string        `json:"task,omitempty"`
	Inputs   fields.Fields `json:"inputs,omitempty"`
}

// Manual returns a manual trigger node.
func Manual() Node { return Node{Kind: KindManual} }

// Schedule returns a cron trigger node.
func Schedule(expr string) Node { return Node{Kind: KindSchedule, Cron: expr} }

// Webhook returns a webhook trigger node bound to hook.
func Webhook(hook string) Node { return Node{Kind: KindWebhook, Hook: hook} }

// Action returns an action node dispatching task with the given static inputs.
func Action(task string, in fields.Fields) Node {
	return Node{Kind: KindAction, Task: task, Inputs: in}
}

// WithPriority returns a copy of n with its priority set.
func (n Node) WithPriority(p uint32) Node {
	n.Priority = &p
	return n
}

// EffectivePriority returns the priority, or 0 when unset.
func (n Node) EffectivePriority() uint32 {
	if n.Priority == nil {
		return 0
	}
	return *n.Priority
}

// Edge is a directed connection; execution flows from Tail to Head.
type Edge struct {
	Tail   nodeid.NodeID `json:"tail"`
	Head   nodeid.NodeID `json:"head"`
	Offset *int32        `json:"offset,omitempty"`
}

// Link returns an edge from tail to head.
func Link(tail, head nodeid.NodeID) Edge { return Edge{Tail: tail, Head: head} }

// WithOffset returns a copy of e with its sibling ordering hint set.
func (e Edge) WithOffset(o int32) Edge {
	e.Offset = &o
	return e
}

// EffectiveOffset returns the offset, or 0 when unset.
func (e Edge) EffectiveOffset() int32 {
	if e.Offset == nil {
		return 0
	}
	return *e.Offset
}

// Graph is the unit of submission for compilation.
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

// WithNode inserts or replaces a node and returns the graph for chaining.
func (g *Graph) WithNode(id nodeid.NodeID, n Node) *Graph {
	if g.Nodes == nil {
		g.Nodes = make(map[nodeid.NodeID]Node)
	}
	g.Nodes[id] = n
	return g
}

// WithEdge inserts or replaces an edge and returns the graph for chaining.
func (g *Graph) WithEdge(id nodeid.EdgeID, e Edge) *Graph {
	if g.Edges == nil {
		g.Edges = make(map[nodeid.EdgeID]Edge)
	}
	g.Edges[id] = e
	return g
}

// Merge applies a delta: every entry in d replaces the entry with the same id
// in g, and ids absent from d are left untouched. Applying the same delta
// twice gives the same graph as applying it once.
func (g *Graph) Merge(d Delta) {
	for id, n := range d.Nodes {
		g.WithNode(id, n)
	}
	for id, e := range d.Edges {
		g.WithEdge(id, e)
	}
}

// MergeAll applies deltas in order.
func (g *Graph) MergeAll(deltas ...Delta) {
	for _, d := range deltas {
		g.Merge(d)
	}
}

// Delta is a partial set of node and edge replacements.
type Delta struct {
	Nodes map[nodeid.NodeID]Node `json:"nodes,omitempty"`
	Edges map[nodeid.EdgeID]Edge `json:"edges,omitempty"`
}

// IsEmpty reports whether the delta carries no entries.
func (d Delta) IsEmpty() bool {
	return len(d.Nodes) == 0 && len(d.Edges) == 0
}
