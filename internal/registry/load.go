package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/gridflow/internal/config"
	"github.com/vk/gridflow/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// PopulateFromModel builds both registries from a loaded manifest model.
func PopulateFromModel(model *config.Model) (*TaskRegistry, *HookRegistry) {
	tasks := NewTaskRegistry()
	hooks := NewHookRegistry()
	if model == nil {
		return tasks, hooks
	}
	for _, def := range model.Tasks {
		tasks.Register(def)
	}
	for _, def := range model.Hooks {
		hooks.Register(def)
	}
	return tasks, hooks
}

// Validate checks cross-registry consistency: every hook that names a task
// must name a registered one, and task definitions must be well formed.
func Validate(ctx context.Context, tasks *TaskRegistry, hooks *HookRegistry) error {
	logger := ctxlog.FromContext(ctx)
	var errs []string

	for _, name := range tasks.Names() {
		def, _ := tasks.Find(name)
		for inputName, in := range def.Inputs {
			if in == nil || in.Type == cty.NilType {
				errs = append(errs, fmt.Sprintf("task '%s', input '%s': missing type", name, inputName))
			}
		}
		if def.Timeout < 0 {
			errs = append(errs, fmt.Sprintf("task '%s': negative timeout %s", name, def.Timeout))
		}
	}

	for _, id := range hooks.IDs() {
		def, _ := hooks.Find(id)
		if def.Task == "" {
			continue
		}
		if _, ok := tasks.Find(def.Task); !ok {
			errs = append(errs, fmt.Sprintf("hook '%s': references unknown task '%s'", id, def.Task))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Registry validation passed.", "tasks", tasks.Len(), "hooks", hooks.Len())
	return nil
}
