// Package testutil holds shared helpers for the compiler, executor, worker
// and server tests: deterministic graph construction, manifest-backed
// registries, a recording dispatcher and log capture.
package testutil
