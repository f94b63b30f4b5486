package server

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/vk/gridflow/internal/config"
	"github.com/vk/gridflow/internal/ctxlog"
	"github.com/vk/gridflow/internal/pghooks"
)

// HookStore persists webhook bindings. *pghooks.Store implements it; Delete
// returns pghooks.ErrHookNotFound for unknown ids.
type HookStore interface {
	Put(ctx context.Context, def *config.HookDefinition) error
	Delete(ctx context.Context, id string) error
}

type hookView struct {
	ID          string `json:"id"`
	Task        string `json:"task,omitempty"`
	Description string `json:"description,omitempty"`
	Secret      bool   `json:"secret"`
}

type hookRequest struct {
	Task        string `json:"task"`
	Description string `json:"description"`
	Secret      bool   `json:"secret"`
}

func newHookView(def *config.HookDefinition) hookView {
	return hookView{ID: def.ID, Task: def.Task, Description: def.Description, Secret: def.Secret}
}

func (s *Server) listHooks(c fiber.Ctx) error {
	hooks := s.worker.Hooks()
	out := make([]hookView, 0, hooks.Len())
	for _, id := range hooks.IDs() {
		if def, ok := hooks.Find(id); ok {
			out = append(out, newHookView(def))
		}
	}
	return c.JSON(out)
}

// putHook binds or rebinds a webhook. The binding is stored first so the
// live registry never holds a hook the store rejected.
func (s *Server) putHook(c fiber.Ctx) error {
	var req hookRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if req.Task != "" {
		if _, ok := s.worker.Tasks().Find(req.Task); !ok {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unknown task " + req.Task})
		}
	}
	def := &config.HookDefinition{
		ID:          c.Params("id"),
		Task:        req.Task,
		Description: req.Description,
		Secret:      req.Secret,
	}

	if s.hooks != nil {
		if err := s.hooks.Put(c.Context(), def); err != nil {
			ctxlog.FromContext(c.Context()).Error("Storing hook failed.", "hook", def.ID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}
	if err := s.worker.Hooks().Put(def); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	ctxlog.FromContext(c.Context()).Info("Hook bound.", "hook", def.ID, "task", def.Task)
	return c.JSON(newHookView(def))
}

func (s *Server) deleteHook(c fiber.Ctx) error {
	id := c.Params("id")
	stored := false
	if s.hooks != nil {
		err := s.hooks.Delete(c.Context(), id)
		switch {
		case err == nil:
			stored = true
		case !errors.Is(err, pghooks.ErrHookNotFound):
			ctxlog.FromContext(c.Context()).Error("Deleting hook failed.", "hook", id, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}
	if !s.worker.Hooks().Remove(id) && !stored {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "hook not found"})
	}
	ctxlog.FromContext(c.Context()).Info("Hook unbound.", "hook", id)
	return c.SendStatus(fiber.StatusNoContent)
}
