package executor

import (
	"context"
	"errors"
	"time"

	"github.com/vk/gridflow/internal/dag"
	"github.com/vk/gridflow/internal/dispatch"
	"github.com/vk/gridflow/internal/outputs"
	"github.com/vk/gridflow/internal/registry"
	"github.com/vk/gridflow/internal/report"
)

// ErrStalled is returned when nodes remain pending but none can become
// ready. A compiled graph never stalls; it signals a cyclic graph that
// bypassed the compiler.
var ErrStalled = errors.New("executor: graph stalled with pending nodes")

const (
	// DefaultConcurrency is used when the dispatcher does not advertise a
	// capacity.
	DefaultConcurrency = 10
	// DefaultDispatchTimeout bounds a single dispatch unless the task sets
	// its own timeout.
	DefaultDispatchTimeout = 30 * time.Second
)

// ExecuteGraph runs a compiled graph. The returned bundle holds per-node
// failures; the error is reserved for cancellation and broken invariants,
// and is returned together with whatever completed before it.
type ExecuteGraph interface {
	ExecuteGraph(ctx context.Context, g *dag.Graph, tasks *registry.TaskRegistry) (*outputs.Graph, report.Bundle, error)
}

// Options configures the default executor.
type Options struct {
	// LimitConcurrency bounds concurrent dispatches within a batch.
	LimitConcurrency int
	// StrictPriority runs each batch serially in priority order.
	StrictPriority bool
	// ShortCircuit stops scheduling new batches after the first failure.
	ShortCircuit bool
	// DispatchTimeout bounds a single dispatch.
	DispatchTimeout time.Duration
}

// Option mutates Options.
type Option func(*Options)

// WithLimitConcurrency sets the concurrency bound. Values below 1 keep the
// default.
func WithLimitConcurrency(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.LimitConcurrency = n
		}
	}
}

// WithStrictPriority enables serial, priority-ordered batches.
func WithStrictPriority(enabled bool) Option {
	return func(o *Options) { o.StrictPriority = enabled }
}

// WithShortCircuit stops the run after the first failing batch.
func WithShortCircuit(enabled bool) Option {
	return func(o *Options) { o.ShortCircuit = enabled }
}

// WithDispatchTimeout sets the per-dispatch timeout. Values below or equal
// to zero keep the default.
func WithDispatchTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.DispatchTimeout = d
		}
	}
}

// Default is the standard ExecuteGraph implementation.
type Default struct {
	dispatcher dispatch.Dispatcher
	opts       Options
}

var _ ExecuteGraph = (*Default)(nil)

// New creates an executor that dispatches actions through d.
func New(d dispatch.Dispatcher, opts ...Option) *Default {
	o := Options{
		LimitConcurrency: dispatch.CapacityOf(d),
		DispatchTimeout:  DefaultDispatchTimeout,
	}
	if o.LimitConcurrency <= 0 {
		o.LimitConcurrency = DefaultConcurrency
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Default{dispatcher: d, opts: o}
}

// Options returns the executor's configuration.
func (e *Default) Options() Options { return e.opts }

// ExecuteGraph implements the ExecuteGraph interface.
func (e *Default) ExecuteGraph(ctx context.Context, g *dag.Graph, tasks *registry.TaskRegistry) (*outputs.Graph, report.Bundle, error) {
	r := newRun(ctx, e, g, tasks)
	err := r.loop()
	return r.out, r.bundle, err
}
