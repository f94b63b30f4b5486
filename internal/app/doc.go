// Package app wires the manifests, registries, dispatchers, compiler,
// executor and graph worker into one process and serves the HTTP API until
// its context is cancelled. It is decoupled from the command line so tests
// can build an App directly.
package app
