// internal/nodeid/types.go
package nodeid

import (
	"bytes"

	"github.com/google/uuid"
)

// NodeID identifies a node within an input graph.
type NodeID uuid.UUID

// EdgeID identifies an edge within an input graph.
type EdgeID uuid.UUID

// Nil is the zero NodeID.
var Nil NodeID

// NewNode returns a fresh random NodeID.
func NewNode() NodeID { return NodeID(uuid.New()) }

// NewEdge returns a fresh random EdgeID.
func NewEdge() EdgeID { return EdgeID(uuid.New()) }

// String returns the canonical hyphenated form.
func (id NodeID) String() string { return uuid.UUID(id).String() }

// String returns the canonical hyphenated form.
func (id EdgeID) String() string { return uuid.UUID(id).String() }

// Compare orders ids by their raw bytes.
func (id NodeID) Compare(other NodeID) int { return bytes.Compare(id[:], other[:]) }

// Compare orders ids by their raw bytes.
func (id EdgeID) Compare(other EdgeID) int { return bytes.Compare(id[:], other[:]) }

// MarshalText implements encoding.TextMarshaler.
func (id NodeID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *NodeID) UnmarshalText(data []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(data)
}

// MarshalText implements encoding.TextMarshaler.
func (id EdgeID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *EdgeID) UnmarshalText(data []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(data)
}
