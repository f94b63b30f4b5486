// Package compiler validates a user-authored inputs.Graph against the task
// and hook registries and lowers it into an executable dag.Graph.
//
// Compilation runs in three passes: nodes are lowered first and every
// successfully lowered node is mapped from its NodeID to its arena index;
// edges are lowered next by resolving both endpoints through that map; a
// final verification pass checks graph-level rules (trigger presence,
// manual trigger uniqueness, trigger roots, cycles). Every problem with the
// user's graph becomes a report entry; the compiler never fails or panics
// because of graph content.
//
// Nodes and edges are visited in ascending id order so that the same graph
// always yields the same diagnostics in the same order.
package compiler
