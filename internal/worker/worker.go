package worker

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vk/gridflow/internal/compiler"
	"github.com/vk/gridflow/internal/ctxlog"
	"github.com/vk/gridflow/internal/dag"
	"github.com/vk/gridflow/internal/executor"
	"github.com/vk/gridflow/internal/inputs"
	"github.com/vk/gridflow/internal/nodeid"
	"github.com/vk/gridflow/internal/outputs"
	"github.com/vk/gridflow/internal/registry"
	"github.com/vk/gridflow/internal/report"
)

// Handle addresses a loaded graph. Handles start at 1 and are never reused
// by the same worker.
type Handle uint64

// Info summarizes a loaded graph.
type Info struct {
	Handle   Handle        `json:"handle"`
	Nodes    int           `json:"nodes"`
	Edges    int           `json:"edges"`
	Running  bool          `json:"running"`
	LoadedAt time.Time     `json:"loaded_at"`
	Report   report.Bundle `json:"report"`
}

type entry struct {
	graph    *dag.Graph
	report   report.Bundle
	loadedAt time.Time
	cancel   context.CancelFunc
}

// GraphWorker compiles, stores and executes graphs.
type GraphWorker struct {
	compiler compiler.CompileGraph
	executor executor.ExecuteGraph
	tasks    *registry.TaskRegistry
	hooks    *registry.HookRegistry

	mu     sync.Mutex
	next   Handle
	active map[Handle]*entry
}

// New creates a worker. The task registry is read-only from here on; hooks
// may be rebound through the registry while graphs compile.
func New(c compiler.CompileGraph, e executor.ExecuteGraph, tasks *registry.TaskRegistry, hooks *registry.HookRegistry) *GraphWorker {
	return &GraphWorker{
		compiler: c,
		executor: e,
		tasks:    tasks,
		hooks:    hooks,
		active:   make(map[Handle]*entry),
	}
}

// Compiler returns the worker's compiler.
func (w *GraphWorker) Compiler() compiler.CompileGraph { return w.compiler }

// Executor returns the worker's executor.
func (w *GraphWorker) Executor() executor.ExecuteGraph { return w.executor }

// Tasks returns the task registry.
func (w *GraphWorker) Tasks() *registry.TaskRegistry { return w.tasks }

// Hooks returns the hook registry.
func (w *GraphWorker) Hooks() *registry.HookRegistry { return w.hooks }

// Compile applies the deltas to a copy of in and compiles the result without
// registering it.
func (w *GraphWorker) Compile(ctx context.Context, in *inputs.Graph, deltas ...inputs.Delta) (*dag.Graph, report.Bundle) {
	merged := inputs.NewGraph()
	if in != nil {
		merged.Merge(inputs.Delta{Nodes: in.Nodes, Edges: in.Edges})
	}
	merged.MergeAll(deltas...)
	return w.compiler.CompileGraph(ctx, merged, w.tasks, w.hooks)
}

// LoadGraph compiles the graph and, if compilation reported no errors,
// registers it under a new handle. Warnings are returned alongside the
// handle. On errors it returns a *CompileError and registers nothing.
func (w *GraphWorker) LoadGraph(ctx context.Context, in *inputs.Graph, deltas ...inputs.Delta) (Handle, report.Bundle, error) {
	logger := ctxlog.FromContext(ctx)
	g, bundle := w.Compile(ctx, in, deltas...)
	if bundle.HasErrors() {
		logger.Info("Graph rejected.", "errors", len(bundle.Errors()))
		return 0, bundle, &CompileError{Report: bundle}
	}

	w.mu.Lock()
	w.next++
	h := w.next
	w.active[h] = &entry{graph: g, report: bundle, loadedAt: time.Now()}
	w.mu.Unlock()

	logger.Info("✅ Graph loaded.", "handle", h, "nodes", g.NodeCount(), "edges", g.EdgeCount(), "warnings", bundle.Len())
	return h, bundle, nil
}

// UnloadGraph removes a graph and cancels its in-flight execution, if any.
// It reports whether the handle was loaded.
func (w *GraphWorker) UnloadGraph(h Handle) bool {
	w.mu.Lock()
	e, ok := w.active[h]
	var cancel context.CancelFunc
	if ok {
		delete(w.active, h)
		cancel = e.cancel
	}
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return ok
}

// ExecuteGraph runs a loaded graph. The returned output and bundle are
// valid even when err is non-nil.
func (w *GraphWorker) ExecuteGraph(ctx context.Context, h Handle) (*outputs.Graph, report.Bundle, error) {
	return w.execute(ctx, h, nil)
}

// ExecuteGraphFrom runs the node from and every node downstream of it,
// leaving the rest of the graph untouched. Edges into that part from
// outside it carry no data, so from runs on its static inputs alone.
func (w *GraphWorker) ExecuteGraphFrom(ctx context.Context, h Handle, from nodeid.NodeID) (*outputs.Graph, report.Bundle, error) {
	return w.execute(ctx, h, &from)
}

func (w *GraphWorker) execute(ctx context.Context, h Handle, from *nodeid.NodeID) (*outputs.Graph, report.Bundle, error) {
	w.mu.Lock()
	e, ok := w.active[h]
	if !ok {
		w.mu.Unlock()
		return nil, report.Bundle{}, fmt.Errorf("%w: %d", ErrGraphNotFound, h)
	}
	if e.cancel != nil {
		w.mu.Unlock()
		return nil, report.Bundle{}, fmt.Errorf("%w: %d", ErrGraphBusy, h)
	}
	g := e.graph
	if from != nil {
		start, found := g.IndexOf(*from)
		if !found {
			w.mu.Unlock()
			return nil, report.Bundle{}, fmt.Errorf("%w: %s", ErrNodeNotFound, *from)
		}
		sub, err := g.From(start)
		if err != nil {
			w.mu.Unlock()
			return nil, report.Bundle{}, err
		}
		g = sub
	}
	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	w.mu.Unlock()

	defer func() {
		cancel()
		w.mu.Lock()
		e.cancel = nil
		w.mu.Unlock()
	}()

	runCtx, logger := ctxlog.With(runCtx, "handle", h)
	if from != nil {
		logger.Debug("Running from node.", "node", *from, "nodes", g.NodeCount())
	}
	out, bundle, err := w.executor.ExecuteGraph(runCtx, g, w.tasks)
	if err != nil {
		completed := 0
		if out != nil {
			completed = len(out.Nodes)
		}
		logger.Warn("Graph execution ended early.", "error", err, "completed", completed)
		return out, bundle, fmt.Errorf("execute graph %d: %w", h, err)
	}
	return out, bundle, nil
}

// Graph returns the compiled graph for a handle.
func (w *GraphWorker) Graph(h Handle) (*dag.Graph, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.active[h]
	if !ok {
		return nil, false
	}
	return e.graph, true
}

// Handles returns every loaded handle in ascending order.
func (w *GraphWorker) Handles() []Handle {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Handle, 0, len(w.active))
	for h := range w.active {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// List summarizes every loaded graph in handle order.
func (w *GraphWorker) List() []Info {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Info, 0, len(w.active))
	for h, e := range w.active {
		out = append(out, Info{
			Handle:   h,
			Nodes:    e.graph.NodeCount(),
			Edges:    e.graph.EdgeCount(),
			Running:  e.cancel != nil,
			LoadedAt: e.loadedAt,
			Report:   e.report,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}
