// Package registry holds the read-only catalogs the compiler and executor
// resolve graph nodes against: the TaskRegistry maps task names to their
// definitions and the HookRegistry maps webhook ids to their bindings.
//
// Registries are populated once at startup (from loaded manifests, a
// database, or code) and validated; after that they are only queried.
// Registration is not safe for concurrent use with lookups.
package registry
