// Package worker is the façade the rest of the process talks to. A
// GraphWorker owns the task and hook registries, one compiler and one
// executor, and a table of compiled graphs addressed by Handle.
//
// Loading compiles a graph and registers it only when compilation reported
// no errors. Executing runs a registered graph; a handle executes at most
// once at a time, and unloading a handle cancels its in-flight run.
package worker
