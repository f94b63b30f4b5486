package noop

import (
	"context"

	"github.com/vk/gridflow/internal/dispatch"
	"github.com/vk/gridflow/internal/fields"
)

// Module implements the dispatch.Module interface for this package.
type Module struct{}

// OnRunNoop does nothing and produces no outputs.
func OnRunNoop(ctx context.Context, _ fields.Fields) (fields.Fields, error) {
	return fields.Fields{}, nil
}

// Register registers the handler with the local dispatcher.
func (m *Module) Register(l *dispatch.Local) {
	l.Register("noop", OnRunNoop)
}
