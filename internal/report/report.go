// Package report collects compile and execution diagnostics. Each entry is
// tied to the node or edge of the user graph that caused it.
package report

import (
	"encoding/json"
	"fmt"

	"github.com/vk/gridflow/internal/nodeid"
)

// Code names a diagnostic kind. Codes are stable and part of the wire format.
type Code string

const (
	CodeMissingReferencedNode  Code = "missing_referenced_node"
	CodeIncorrectCronFormat    Code = "incorrect_cron_format"
	CodeUnknownNodeKind        Code = "unknown_node_kind"
	CodeMissingTask            Code = "missing_task"
	CodeMissingHook            Code = "missing_hook"
	CodeMissingTaskInput       Code = "missing_task_input"
	CodeUnknownTaskInput       Code = "unknown_task_input"
	CodeMismatchedInputType    Code = "mismatched_input_type"
	CodeMissingTrigger         Code = "missing_trigger"
	CodeDuplicateManualTrigger Code = "duplicate_manual_trigger"
	CodeTriggerHasIncomingEdge Code = "trigger_has_incoming_edge"
	CodeGraphCycle             Code = "graph_cycle"
	CodeDetachedAction         Code = "detached_action"
	CodeDispatchFailed         Code = "dispatch_failed"
	CodeDispatchTimeout        Code = "dispatch_timeout"
)

// Target identifies the graph element a diagnostic refers to. Exactly one of
// Node or Edge is set.
type Target struct {
	Node *nodeid.NodeID
	Edge *nodeid.EdgeID
}

// NodeTarget targets a node.
func NodeTarget(id nodeid.NodeID) Target { return Target{Node: &id} }

// EdgeTarget targets an edge.
func EdgeTarget(id nodeid.EdgeID) Target { return Target{Edge: &id} }

func (t Target) String() string {
	switch {
	case t.Node != nil:
		return "node " + t.Node.String()
	case t.Edge != nil:
		return "edge " + t.Edge.String()
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the target as {"node": id} or {"edge": id}.
func (t Target) MarshalJSON() ([]byte, error) {
	switch {
	case t.Node != nil:
		return json.Marshal(map[string]nodeid.NodeID{"node": *t.Node})
	case t.Edge != nil:
		return json.Marshal(map[string]nodeid.EdgeID{"edge": *t.Edge})
	default:
		return nil, fmt.Errorf("report: empty target")
	}
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (t *Target) UnmarshalJSON(data []byte) error {
	var raw struct {
		Node *nodeid.NodeID `json:"node"`
		Edge *nodeid.EdgeID `json:"edge"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if (raw.Node == nil) == (raw.Edge == nil) {
		return fmt.Errorf("report: target must name exactly one of node or edge")
	}
	t.Node, t.Edge = raw.Node, raw.Edge
	return nil
}

// Severity distinguishes warnings from errors.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Class pairs a severity with a code.
type Class struct {
	Severity Severity
	Code     Code
}

// Warning returns a warning class.
func Warning(code Code) Class { return Class{Severity: SeverityWarning, Code: code} }

// ErrorClass returns an error class.
func ErrorClass(code Code) Class { return Class{Severity: SeverityError, Code: code} }

// MarshalJSON encodes the class as {"warning": code} or {"error": code}.
func (c Class) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]Code{c.Severity.String(): c.Code})
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (c *Class) UnmarshalJSON(data []byte) error {
	var raw map[string]Code
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("report: class must have exactly one member")
	}
	for k, code := range raw {
		switch k {
		case "warning":
			*c = Warning(code)
		case "error":
			*c = ErrorClass(code)
		default:
			return fmt.Errorf("report: unknown class %q", k)
		}
	}
	return nil
}

// Error is a single diagnostic.
type Error struct {
	Target  Target `json:"target"`
	Class   Class  `json:"class"`
	Message string `json:"message"`
}

// IsError reports whether the entry is error-class.
func (e Error) IsError() bool { return e.Class.Severity == SeverityError }

func (e Error) String() string {
	return fmt.Sprintf("%s %s on %s: %s", e.Class.Severity, e.Class.Code, e.Target, e.Message)
}

// MissingReferencedNode reports an edge whose endpoint is not in the graph.
func MissingReferencedNode(edge nodeid.EdgeID, missing nodeid.NodeID) Error {
	return Error{
		Target:  EdgeTarget(edge),
		Class:   ErrorClass(CodeMissingReferencedNode),
		Message: fmt.Sprintf("referenced node %s is missing or failed to compile", missing),
	}
}

// IncorrectCronFormat reports a schedule that does not parse.
func IncorrectCronFormat(node nodeid.NodeID, expr string, err error) Error {
	return Error{
		Target:  NodeTarget(node),
		Class:   ErrorClass(CodeIncorrectCronFormat),
		Message: fmt.Sprintf("cron expression %q is invalid: %v", expr, err),
	}
}

// OnNode builds an entry targeting a node.
func OnNode(id nodeid.NodeID, class Class, format string, args ...any) Error {
	return Error{Target: NodeTarget(id), Class: class, Message: fmt.Sprintf(format, args...)}
}

// OnEdge builds an entry targeting an edge.
func OnEdge(id nodeid.EdgeID, class Class, format string, args ...any) Error {
	return Error{Target: EdgeTarget(id), Class: class, Message: fmt.Sprintf(format, args...)}
}
