// Package dag holds the compiled, executable form of a user graph.
//
// A Graph is an arena: nodes and edges live in slices and are addressed by
// their dense integer index for the lifetime of one compiled graph. Each
// node keeps a back-reference to the NodeID it was lowered from, and each
// edge keeps the EdgeID it came from, so diagnostics and execution results
// can be reported in terms of the user's identifiers.
//
// # Building
//
// Only the compiler builds graphs. AddNode appends and returns the new index;
// AddEdge validates that both endpoints are inside the arena and records the
// edge in the outgoing list of its tail and the incoming list of its head.
// An out-of-range endpoint is an internal invariant violation
// (ErrNodeOutOfRange), never a user error: the compiler resolves user ids
// before it touches the graph.
//
// # Reading
//
// Once compiled a Graph is never mutated. All query methods are safe to call
// from concurrently running node executions without locking.
//
//	for _, e := range g.Incoming(i) {
//	    edge := g.Edge(e)
//	    // edge.Tail finished before node i may start
//	}
//
// Cycles are not rejected while building. BackEdges reports the edges that
// close a cycle in depth-first order so the compiler can turn them into
// diagnostics.
package dag
