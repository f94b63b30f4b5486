// Package executor runs a compiled graph to completion.
//
// It pulls batches of ready nodes from a scheduler.State, dispatches every
// action in the batch through a dispatch.Dispatcher, and records each
// success into an outputs.Graph with a completion counter. Triggers complete
// immediately. A failed action fails only its own branch: its descendants
// are skipped while disjoint branches keep running.
//
// Concurrency inside a batch is bounded by a weighted semaphore whose size
// defaults to the dispatcher's advertised capacity. Batches themselves run
// one after another, so execution order is always topological.
package executor
