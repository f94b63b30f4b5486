package config

import "context"

// Loader is the interface for a format-specific manifest loader.
type Loader interface {
	// Load reads every manifest found under the given files or directories.
	// Paths that do not exist are skipped.
	Load(ctx context.Context, paths ...string) (*Model, error)

	// LoadSource parses a single in-memory manifest. The filename is used
	// for diagnostics only.
	LoadSource(ctx context.Context, filename string, src []byte) (*Model, error)
}
