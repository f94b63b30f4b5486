package dispatch

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/gridflow/internal/ctxlog"
	"github.com/vk/gridflow/internal/fields"
)

// Handler is the Go implementation of a task.
type Handler func(ctx context.Context, inputs fields.Fields) (fields.Fields, error)

// Module is implemented by packages that contribute task handlers.
type Module interface {
	Register(l *Local)
}

// Local runs tasks in-process through registered handlers.
type Local struct {
	handlers map[string]Handler
	workers  int
}

// NewLocal creates a local dispatcher advertising the given worker count and
// registers every module's handlers.
func NewLocal(workers int, modules ...Module) *Local {
	l := &Local{handlers: make(map[string]Handler), workers: workers}
	for _, m := range modules {
		m.Register(l)
	}
	return l
}

// Register adds the handler for a task. It panics if one is already
// registered under that name.
func (l *Local) Register(task string, h Handler) {
	if _, exists := l.handlers[task]; exists {
		panic(fmt.Sprintf("dispatch: handler for task '%s' is already registered", task))
	}
	l.handlers[task] = h
}

// Has reports whether a handler is registered for task.
func (l *Local) Has(task string) bool {
	_, ok := l.handlers[task]
	return ok
}

// Tasks returns the names of all registered handlers, sorted.
func (l *Local) Tasks() []string {
	names := make([]string, 0, len(l.handlers))
	for name := range l.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Capacity implements Sized.
func (l *Local) Capacity() int { return l.workers }

// Dispatch runs the registered handler. A panicking handler is reported as
// an error for its node only.
func (l *Local) Dispatch(ctx context.Context, req Request) (out fields.Fields, err error) {
	h, ok := l.handlers[req.Task]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, req.Task)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			ctxlog.FromContext(ctx).Error("Task handler panicked.", "task", req.Task, "panic", r)
			out, err = nil, fmt.Errorf("handler for task '%s' panicked: %v", req.Task, r)
		}
	}()
	return h(ctx, req.Inputs.Clone())
}
