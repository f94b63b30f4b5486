package executor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vk/gridflow/internal/ctxlog"
	"github.com/vk/gridflow/internal/dag"
	"github.com/vk/gridflow/internal/dispatch"
	"github.com/vk/gridflow/internal/fields"
	"github.com/vk/gridflow/internal/outputs"
	"github.com/vk/gridflow/internal/registry"
	"github.com/vk/gridflow/internal/report"
	"github.com/vk/gridflow/internal/scheduler"
	"golang.org/x/sync/semaphore"
)

// run is the state of one ExecuteGraph call. mu guards every field below it.
type run struct {
	ctx   context.Context
	exec  *Default
	g     *dag.Graph
	tasks *registry.TaskRegistry
	sem   *semaphore.Weighted

	mu      sync.Mutex
	state   *scheduler.State
	out     *outputs.Graph
	bundle  report.Bundle
	results map[int]fields.Fields
	counter uint64
	failed  bool
	err     error
}

func newRun(ctx context.Context, e *Default, g *dag.Graph, tasks *registry.TaskRegistry) *run {
	return &run{
		ctx:     ctx,
		exec:    e,
		g:       g,
		tasks:   tasks,
		sem:     semaphore.NewWeighted(int64(e.opts.LimitConcurrency)),
		state:   scheduler.New(g),
		out:     outputs.NewGraph(),
		results: make(map[int]fields.Fields),
	}
}

func (r *run) loop() error {
	logger := ctxlog.FromContext(r.ctx)
	logger.Info("🚀 Starting graph execution.", "nodes", r.g.NodeCount(), "concurrency", r.exec.opts.LimitConcurrency, "strict_priority", r.exec.opts.StrictPriority)
	start := time.Now()

	for batchNo := 1; ; batchNo++ {
		if err := r.ctx.Err(); err != nil {
			logger.Warn("Execution cancelled.", "error", err)
			return err
		}

		r.mu.Lock()
		batch := r.state.NextBatch()
		r.mu.Unlock()
		if len(batch) == 0 {
			break
		}
		logger.Debug("Running batch.", "batch", batchNo, "size", len(batch))

		if r.exec.opts.StrictPriority {
			for _, i := range batch {
				r.runNode(i)
			}
		} else {
			var wg sync.WaitGroup
			for _, i := range batch {
				if err := r.sem.Acquire(r.ctx, 1); err != nil {
					// The remaining nodes of the batch never started.
					break
				}
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					defer r.sem.Release(1)
					r.runNode(i)
				}(i)
			}
			wg.Wait()
		}

		r.mu.Lock()
		stop, err := r.failed && r.exec.opts.ShortCircuit, r.err
		r.mu.Unlock()
		if err != nil {
			return err
		}
		if stop {
			logger.Info("Stopping after failed batch.", "batch", batchNo)
			break
		}
	}

	if err := r.ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	pending := r.state.Pending()
	counts := r.state.Counts()
	stopped := r.failed && r.exec.opts.ShortCircuit
	r.mu.Unlock()
	if len(pending) > 0 && !stopped {
		return fmt.Errorf("%w: %d node(s)", ErrStalled, len(pending))
	}

	logger.Info("🏁 Graph execution finished.",
		"succeeded", counts[scheduler.Succeeded],
		"failed", counts[scheduler.Failed],
		"skipped", counts[scheduler.Skipped],
		"duration", time.Since(start))
	return nil
}

// runNode executes one node and applies its outcome.
func (r *run) runNode(i int) {
	n := r.g.Node(i)
	ctx, logger := ctxlog.With(r.ctx, "node", n.InputID, "kind", n.Kind)

	if n.Kind.IsTrigger() {
		logger.Debug("Trigger fired.")
		r.succeed(i, nil, nil, false)
		return
	}
	if err := ctx.Err(); err != nil {
		r.abandon(i)
		return
	}

	def, ok := r.tasks.Find(n.Task.Name)
	if !ok {
		r.fail(i, report.OnNode(n.InputID, report.ErrorClass(report.CodeMissingTask), "task %q is not registered", n.Task.Name))
		return
	}

	r.mu.Lock()
	in := r.collectInputs(i)
	r.mu.Unlock()

	timeout := r.exec.opts.DispatchTimeout
	if def.Timeout > 0 {
		timeout = def.Timeout
	}
	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger.Debug("Dispatching action.", "task", def.Name, "service", def.Service, "timeout", timeout)
	out, err := r.exec.dispatcher.Dispatch(dctx, dispatch.Request{
		Node:    n.InputID,
		Task:    def.Name,
		Service: def.Service,
		Inputs:  in,
	})

	switch {
	case r.ctx.Err() != nil:
		logger.Debug("Discarding result after cancellation.")
		r.abandon(i)
	case err != nil && errors.Is(err, context.DeadlineExceeded):
		logger.Debug("Action timed out.", "timeout", timeout)
		r.fail(i, report.OnNode(n.InputID, report.ErrorClass(report.CodeDispatchTimeout), "task %q did not finish within %s", def.Name, timeout))
	case err != nil:
		logger.Debug("Action failed.", "error", err)
		r.fail(i, report.OnNode(n.InputID, report.ErrorClass(report.CodeDispatchFailed), "task %q failed: %v", def.Name, err))
	default:
		if out == nil {
			out = fields.Fields{}
		}
		r.succeed(i, in, out, true)
	}
}

// collectInputs merges predecessor outputs in ascending edge offset, then
// edge index, and lays the node's static inputs over them. Callers hold mu.
func (r *run) collectInputs(i int) fields.Fields {
	incoming := append([]int(nil), r.g.Incoming(i)...)
	sort.SliceStable(incoming, func(a, b int) bool {
		ea, eb := r.g.Edge(incoming[a]), r.g.Edge(incoming[b])
		if ea.Offset != eb.Offset {
			return ea.Offset < eb.Offset
		}
		return incoming[a] < incoming[b]
	})

	in := fields.Fields{}
	for _, e := range incoming {
		in.Merge(r.results[r.g.Edge(e).Tail])
	}
	return in.Merge(r.g.Node(i).Task.Inputs)
}

func (r *run) succeed(i int, in, out fields.Fields, record bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record {
		r.counter++
		id := r.g.Node(i).InputID
		r.out.Nodes[id] = outputs.Node{Counter: r.counter, Inputs: in, Outputs: out}
		for _, e := range r.g.Incoming(i) {
			r.out.Edges[r.g.Edge(e).InputID] = outputs.Edge{}
		}
		r.results[i] = out
	}
	if _, err := r.state.MarkSucceeded(i); err != nil && r.err == nil {
		r.err = err
	}
}

func (r *run) fail(i int, entry report.Error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bundle.Add(entry)
	r.failed = true
	skipped, err := r.state.MarkFailed(i)
	if err != nil && r.err == nil {
		r.err = err
	}
	if len(skipped) > 0 {
		ctxlog.FromContext(r.ctx).Debug("Skipping descendants of failed node.", "node", r.g.Node(i).InputID, "skipped", len(skipped))
	}
}

// abandon marks a node failed without a diagnostic. Used once the run is
// cancelled, so the node is simply absent from the output.
func (r *run) abandon(i int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.state.MarkFailed(i); err != nil && r.err == nil {
		r.err = err
	}
}
