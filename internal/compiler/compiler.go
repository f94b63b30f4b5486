package compiler

import (
	"context"
	"slices"

	"github.com/vk/gridflow/internal/ctxlog"
	"github.com/vk/gridflow/internal/dag"
	"github.com/vk/gridflow/internal/inputs"
	"github.com/vk/gridflow/internal/nodeid"
	"github.com/vk/gridflow/internal/registry"
	"github.com/vk/gridflow/internal/report"
)

// CompileGraph lowers an input graph into an executable graph. The returned
// bundle holds every diagnostic; callers must check it before trusting the
// graph, which may be partial.
type CompileGraph interface {
	CompileGraph(ctx context.Context, in *inputs.Graph, tasks *registry.TaskRegistry, hooks *registry.HookRegistry) (*dag.Graph, report.Bundle)
}

// Options configures the default compiler.
type Options struct {
	// ShortCircuit stops compilation at the first error-class diagnostic.
	ShortCircuit bool
	// LenientHooks downgrades unresolved webhook ids to warnings.
	LenientHooks bool
	// Instance identifies this compiler in logs.
	Instance uint32
}

// Option mutates Options.
type Option func(*Options)

// WithShortCircuit enables or disables stopping at the first error.
func WithShortCircuit(enabled bool) Option {
	return func(o *Options) { o.ShortCircuit = enabled }
}

// WithLenientHooks enables or disables tolerating unknown webhook ids.
func WithLenientHooks(enabled bool) Option {
	return func(o *Options) { o.LenientHooks = enabled }
}

// WithInstance sets the compiler instance id used in logs.
func WithInstance(id uint32) Option {
	return func(o *Options) { o.Instance = id }
}

// Default is the standard CompileGraph implementation.
type Default struct {
	opts Options
}

var _ CompileGraph = (*Default)(nil)

// New creates a compiler with the given options applied over the defaults.
func New(opts ...Option) *Default {
	c := &Default{}
	for _, opt := range opts {
		opt(&c.opts)
	}
	return c
}

// Options returns the compiler's configuration.
func (c *Default) Options() Options { return c.opts }

// CompileGraph implements the CompileGraph interface.
func (c *Default) CompileGraph(ctx context.Context, in *inputs.Graph, tasks *registry.TaskRegistry, hooks *registry.HookRegistry) (*dag.Graph, report.Bundle) {
	ctx, logger := ctxlog.With(ctx, "compiler", c.opts.Instance)
	s := &session{
		ctx:   ctx,
		opts:  c.opts,
		tasks: tasks,
		hooks: hooks,
		graph: dag.New(),
		index: make(map[nodeid.NodeID]int),
	}
	if in == nil {
		in = inputs.NewGraph()
	}
	logger.Debug("Compiling graph.", "nodes", len(in.Nodes), "edges", len(in.Edges), "short_circuit", c.opts.ShortCircuit)

	if s.lowerNodes(in) && s.lowerEdges(in) {
		s.verify()
	}

	if s.bundle.HasErrors() {
		logger.Info("❌ Graph compilation reported errors.", "errors", len(s.bundle.Errors()), "warnings", len(s.bundle.Warnings()), "aborted", s.aborted)
	} else {
		logger.Debug("✅ Graph compiled.", "nodes", s.graph.NodeCount(), "edges", s.graph.EdgeCount(), "warnings", s.bundle.Len())
	}
	return s.graph, s.bundle
}

// session is the state of one compile call. The id-to-index map lives only
// as long as the session.
type session struct {
	ctx     context.Context
	opts    Options
	tasks   *registry.TaskRegistry
	hooks   *registry.HookRegistry
	graph   *dag.Graph
	index   map[nodeid.NodeID]int
	bundle  report.Bundle
	aborted bool
}

// add records a diagnostic and reports whether compilation may continue.
func (s *session) add(e report.Error) bool {
	s.bundle.Add(e)
	if e.IsError() && s.opts.ShortCircuit {
		s.aborted = true
	}
	return !s.aborted
}

func (s *session) lowerNodes(in *inputs.Graph) bool {
	logger := ctxlog.FromContext(s.ctx)
	ids := make([]nodeid.NodeID, 0, len(in.Nodes))
	for id := range in.Nodes {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, nodeid.NodeID.Compare)

	for _, id := range ids {
		node, diags := s.lowerNode(id, in.Nodes[id])
		failed := false
		for _, d := range diags {
			if d.IsError() {
				failed = true
				logger.Debug("Node error.", "node", id, "code", d.Class.Code, "message", d.Message)
			}
			if !s.add(d) {
				return false
			}
		}
		if failed {
			continue
		}
		s.index[id] = s.graph.AddNode(node)
		logger.Debug("Node processed.", "node", id, "kind", node.Kind, "index", s.index[id])
	}
	return true
}

func (s *session) lowerEdges(in *inputs.Graph) bool {
	logger := ctxlog.FromContext(s.ctx)
	ids := make([]nodeid.EdgeID, 0, len(in.Edges))
	for id := range in.Edges {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, nodeid.EdgeID.Compare)

	for _, id := range ids {
		e := in.Edges[id]
		tail, okTail := s.index[e.Tail]
		head, okHead := s.index[e.Head]
		if !okTail || !okHead {
			missing := e.Tail
			if okTail {
				missing = e.Head
			}
			logger.Debug("Edge error.", "edge", id, "missing", missing)
			if !s.add(report.MissingReferencedNode(id, missing)) {
				return false
			}
			continue
		}

		idx, err := s.graph.AddEdge(dag.Edge{InputID: id, Tail: tail, Head: head, Offset: e.EffectiveOffset()})
		if err != nil {
			// Both endpoints came from the index map.
			panic(err)
		}
		logger.Debug("Edge processed.", "edge", id, "tail", tail, "head", head, "index", idx)
	}
	return true
}
