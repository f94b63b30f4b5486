package server

import (
	"sort"

	"github.com/gofiber/fiber/v3"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/vk/gridflow/internal/config"
	"github.com/vk/gridflow/internal/fields"
)

type fieldView struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
	Default     any    `json:"default,omitempty"`
}

type taskView struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Service     string      `json:"service,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	Timeout     string      `json:"timeout,omitempty"`
	Inputs      []fieldView `json:"inputs"`
	Outputs     []fieldView `json:"outputs"`
}

func newTaskView(def *config.TaskDefinition) taskView {
	v := taskView{
		Name:        def.Name,
		Description: def.Description,
		Service:     def.Service,
		Tags:        def.Tags,
		Inputs:      []fieldView{},
		Outputs:     []fieldView{},
	}
	if def.Timeout > 0 {
		v.Timeout = def.Timeout.String()
	}
	for _, in := range def.Inputs {
		f := fieldView{
			Name:        in.Name,
			Type:        typeexpr.TypeString(in.Type),
			Description: in.Description,
			Required:    in.Required(),
		}
		if in.Default != nil {
			if plain, err := (fields.Fields{"v": *in.Default}).ToInterface(); err == nil {
				f.Default = plain["v"]
			}
		}
		v.Inputs = append(v.Inputs, f)
	}
	for _, out := range def.Outputs {
		v.Outputs = append(v.Outputs, fieldView{
			Name:        out.Name,
			Type:        typeexpr.TypeString(out.Type),
			Description: out.Description,
		})
	}
	sort.Slice(v.Inputs, func(i, j int) bool { return v.Inputs[i].Name < v.Inputs[j].Name })
	sort.Slice(v.Outputs, func(i, j int) bool { return v.Outputs[i].Name < v.Outputs[j].Name })
	return v
}

func (s *Server) listTasks(c fiber.Ctx) error {
	var tags []string
	if tag := c.Query("tag"); tag != "" {
		tags = append(tags, tag)
	}
	defs := s.worker.Tasks().FindByTags(tags...)
	out := make([]taskView, 0, len(defs))
	for _, def := range defs {
		out = append(out, newTaskView(def))
	}
	return c.JSON(out)
}

func (s *Server) getTask(c fiber.Ctx) error {
	def, ok := s.worker.Tasks().Find(c.Params("name"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "task not found"})
	}
	return c.JSON(newTaskView(def))
}
