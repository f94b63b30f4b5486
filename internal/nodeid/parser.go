// internal/nodeid/parser.go
package nodeid

import (
	"fmt"

	"github.com/google/uuid"
)

// ParseNode parses the string form of a NodeID.
func ParseNode(raw string) (NodeID, error) {
	if raw == "" {
		return Nil, fmt.Errorf("node identifier cannot be empty")
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return Nil, fmt.Errorf("invalid node identifier %q: %w", raw, err)
	}
	return NodeID(u), nil
}

// ParseEdge parses the string form of an EdgeID.
func ParseEdge(raw string) (EdgeID, error) {
	if raw == "" {
		return EdgeID{}, fmt.Errorf("edge identifier cannot be empty")
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return EdgeID{}, fmt.Errorf("invalid edge identifier %q: %w", raw, err)
	}
	return EdgeID(u), nil
}

// MustNode is like ParseNode but panics on error. Intended for tests and
// fixed identifiers.
func MustNode(raw string) NodeID {
	id, err := ParseNode(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// MustEdge is like ParseEdge but panics on error.
func MustEdge(raw string) EdgeID {
	id, err := ParseEdge(raw)
	if err != nil {
		panic(err)
	}
	return id
}
