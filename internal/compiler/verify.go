package compiler

import (
	"github.com/vk/gridflow/internal/dag"
	"github.com/vk/gridflow/internal/report"
)

// verify checks graph-level rules that no single node or edge reveals.
func (s *session) verify() {
	g := s.graph
	if g.NodeCount() == 0 {
		return
	}

	triggers := 0
	manualSeen := false
	for i := 0; i < g.NodeCount(); i++ {
		n := g.Node(i)
		if !n.Kind.IsTrigger() {
			continue
		}
		triggers++
		if n.Kind != dag.KindManual {
			continue
		}
		if manualSeen {
			if !s.add(report.OnNode(n.InputID, report.ErrorClass(report.CodeDuplicateManualTrigger),
				"graph may contain at most one manual trigger")) {
				return
			}
		}
		manualSeen = true
	}
	if triggers == 0 {
		if !s.add(report.OnNode(g.Node(0).InputID, report.ErrorClass(report.CodeMissingTrigger),
			"graph has no trigger node")) {
			return
		}
	}

	for i := 0; i < g.EdgeCount(); i++ {
		e := g.Edge(i)
		if g.Node(e.Head).Kind.IsTrigger() {
			if !s.add(report.OnEdge(e.InputID, report.ErrorClass(report.CodeTriggerHasIncomingEdge),
				"edge points into trigger node %s", g.Node(e.Head).InputID)) {
				return
			}
		}
	}

	for _, idx := range g.BackEdges() {
		e := g.Edge(idx)
		if !s.add(report.OnEdge(e.InputID, report.ErrorClass(report.CodeGraphCycle),
			"edge closes a cycle through node %s", g.Node(e.Head).InputID)) {
			return
		}
	}

	for _, root := range g.Roots() {
		n := g.Node(root)
		if n.Kind == dag.KindAction {
			s.add(report.OnNode(n.InputID, report.Warning(report.CodeDetachedAction),
				"action has no incoming edges and runs as soon as execution starts"))
		}
	}
}
