package dispatch

import (
	"context"
	"errors"

	"github.com/vk/gridflow/internal/fields"
	"github.com/vk/gridflow/internal/nodeid"
)

var (
	// ErrNoHandler is returned when no handler is registered for a task.
	ErrNoHandler = errors.New("dispatch: no handler for task")
	// ErrNoRoute is returned when no dispatcher serves a task's service.
	ErrNoRoute = errors.New("dispatch: no dispatcher for service")
	// ErrNotConnected is returned when the runtime connection is down.
	ErrNotConnected = errors.New("dispatch: runtime is not connected")
)

// Request describes one action execution.
type Request struct {
	Node    nodeid.NodeID
	Task    string
	Service string
	Inputs  fields.Fields
}

// Dispatcher runs a single action and returns its output fields.
// Implementations must honor ctx cancellation.
type Dispatcher interface {
	Dispatch(ctx context.Context, req Request) (fields.Fields, error)
}

// Sized is implemented by dispatchers backed by a fixed number of workers.
// The executor uses it as its default concurrency limit.
type Sized interface {
	Capacity() int
}

// Func adapts a plain function to the Dispatcher interface.
type Func func(ctx context.Context, req Request) (fields.Fields, error)

// Dispatch calls f.
func (f Func) Dispatch(ctx context.Context, req Request) (fields.Fields, error) {
	return f(ctx, req)
}

// CapacityOf returns d's capacity if it is Sized, otherwise 0.
func CapacityOf(d Dispatcher) int {
	if s, ok := d.(Sized); ok {
		return s.Capacity()
	}
	return 0
}
