// Package config defines the format-agnostic manifest model: the task
// definitions the compiler resolves action nodes against and the webhook
// bindings it resolves webhook triggers against. It also defines the Loader
// interface that format-specific readers (such as the HCL loader) implement.
//
// The registry package is populated from a Model; nothing downstream of the
// registry depends on how the manifests were written.
package config
