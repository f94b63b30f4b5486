// Package scheduler tracks the per-run state of every node in a compiled
// graph and decides which nodes may run next.
//
// # How It Works
//
// Each node moves through a small state machine:
//
//	Pending -> Ready -> Running -> Succeeded | Failed
//	Pending -> Skipped                     (an ancestor failed)
//
// A node becomes Ready once every incoming edge's tail has Succeeded. The
// executor repeatedly asks for the next batch (all Ready nodes, ordered by
// priority then index), runs it, and reports each outcome back. A failure
// skips every not-yet-run descendant, so disjoint branches keep going while
// the failing branch stops.
//
// # Thread-Safety
//
// State is not safe for concurrent use. The executor serializes access.
package scheduler
