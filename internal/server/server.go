package server

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/vk/gridflow/internal/ctxlog"
	"github.com/vk/gridflow/internal/inputs"
	"github.com/vk/gridflow/internal/nodeid"
	"github.com/vk/gridflow/internal/outputs"
	"github.com/vk/gridflow/internal/report"
	"github.com/vk/gridflow/internal/worker"
)

// Server is the HTTP front of a GraphWorker.
type Server struct {
	app    *fiber.App
	worker *worker.GraphWorker
	base   context.Context
	hooks  HookStore
}

// Option configures a Server.
type Option func(*Server)

// WithHookStore persists hook bindings changed through the API.
func WithHookStore(store HookStore) Option {
	return func(s *Server) { s.hooks = store }
}

// New builds the fiber app and registers every route. Request handlers log
// through the logger carried by ctx.
func New(ctx context.Context, w *worker.GraphWorker, opts ...Option) *Server {
	s := &Server{
		app:    fiber.New(fiber.Config{AppName: "gridflow"}),
		worker: w,
		base:   ctx,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.app.Use(recoverer.New())
	s.app.Use(s.withLogger)

	s.app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := s.app.Group("/api")
	api.Post("/compile", s.compile)
	api.Post("/graphs", s.loadGraph)
	api.Get("/graphs", s.listGraphs)
	api.Delete("/graphs/:handle", s.unloadGraph)
	api.Post("/graphs/:handle/execute", s.executeGraph)
	api.Get("/tasks", s.listTasks)
	api.Get("/tasks/:name", s.getTask)
	api.Get("/hooks", s.listHooks)
	api.Put("/hooks/:id", s.putHook)
	api.Delete("/hooks/:id", s.deleteHook)
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Listen(ctx context.Context, addr string) error {
	ctxlog.FromContext(ctx).Info("🚀 HTTP API listening.", "addr", addr)
	return s.app.Listen(addr, fiber.ListenConfig{
		GracefulContext:       ctx,
		DisableStartupMessage: true,
		ShutdownTimeout:       10 * time.Second,
	})
}

func (s *Server) withLogger(c fiber.Ctx) error {
	logger := ctxlog.FromContext(s.base).With("method", c.Method(), "path", c.Path())
	c.SetContext(ctxlog.WithLogger(s.base, logger))
	start := time.Now()
	err := c.Next()
	logger.Debug("Request served.", "status", c.Response().StatusCode(), "duration", time.Since(start))
	return err
}

type graphRequest struct {
	Graph  inputs.Graph   `json:"graph"`
	Deltas []inputs.Delta `json:"deltas,omitempty"`
}

func (s *Server) compile(c fiber.Ctx) error {
	var req graphRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	g, bundle := s.worker.Compile(c.Context(), &req.Graph, req.Deltas...)
	return c.JSON(fiber.Map{
		"ok":     !bundle.HasErrors(),
		"nodes":  g.NodeCount(),
		"edges":  g.EdgeCount(),
		"report": bundle,
	})
}

func (s *Server) loadGraph(c fiber.Ctx) error {
	var req graphRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	h, bundle, err := s.worker.LoadGraph(c.Context(), &req.Graph, req.Deltas...)
	var compileErr *worker.CompileError
	if errors.As(err, &compileErr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error(), "report": bundle})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"handle": h, "report": bundle})
}

func (s *Server) listGraphs(c fiber.Ctx) error {
	return c.JSON(s.worker.List())
}

func (s *Server) unloadGraph(c fiber.Ctx) error {
	h, ok := parseHandle(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid handle"})
	}
	if !s.worker.UnloadGraph(h) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "graph not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) executeGraph(c fiber.Ctx) error {
	h, ok := parseHandle(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid handle"})
	}
	var (
		out    *outputs.Graph
		bundle report.Bundle
		err    error
	)
	if raw := c.Query("from"); raw != "" {
		from, perr := nodeid.ParseNode(raw)
		if perr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": perr.Error()})
		}
		out, bundle, err = s.worker.ExecuteGraphFrom(c.Context(), h, from)
	} else {
		out, bundle, err = s.worker.ExecuteGraph(c.Context(), h)
	}
	switch {
	case errors.Is(err, worker.ErrGraphNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "graph not found"})
	case errors.Is(err, worker.ErrGraphBusy):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "graph is already executing"})
	case errors.Is(err, worker.ErrNodeNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "node not found"})
	case err != nil:
		ctxlog.FromContext(c.Context()).Error("Execution failed.", "handle", h, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error(), "outputs": out, "report": bundle})
	}
	return c.JSON(fiber.Map{"ok": !bundle.HasErrors(), "outputs": out, "report": bundle})
}

func parseHandle(c fiber.Ctx) (worker.Handle, bool) {
	n, err := strconv.ParseUint(c.Params("handle"), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return worker.Handle(n), true
}
