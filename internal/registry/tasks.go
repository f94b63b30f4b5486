package registry

import (
	"fmt"
	"sort"

	"github.com/vk/gridflow/internal/config"
)

// TaskRegistry resolves task names to their definitions.
type TaskRegistry struct {
	tasks map[string]*config.TaskDefinition
}

// NewTaskRegistry creates an empty task registry.
func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{tasks: make(map[string]*config.TaskDefinition)}
}

// Register adds a task definition. It panics if the name is empty or a task
// with the same name is already registered, as this indicates a programming
// error in manifest wiring.
func (r *TaskRegistry) Register(def *config.TaskDefinition) {
	if def == nil || def.Name == "" {
		panic("registry: task definition must have a name")
	}
	if _, exists := r.tasks[def.Name]; exists {
		panic(fmt.Sprintf("registry: task '%s' is already registered", def.Name))
	}
	r.tasks[def.Name] = def
}

// Merge copies every task of other into r, replacing tasks with the same name.
func (r *TaskRegistry) Merge(other *TaskRegistry) {
	if other == nil {
		return
	}
	for name, def := range other.tasks {
		r.tasks[name] = def
	}
}

// Find returns the task with the given name. A nil registry finds nothing.
func (r *TaskRegistry) Find(name string) (*config.TaskDefinition, bool) {
	if r == nil {
		return nil, false
	}
	def, ok := r.tasks[name]
	return def, ok
}

// FindByTags returns every task carrying all of tags, sorted by name. With
// no tags it returns every task.
func (r *TaskRegistry) FindByTags(tags ...string) []*config.TaskDefinition {
	if r == nil {
		return nil
	}
	var out []*config.TaskDefinition
	for _, def := range r.tasks {
		if def.HasTags(tags...) {
			out = append(out, def)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the registered task names in sorted order.
func (r *TaskRegistry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tasks.
func (r *TaskRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.tasks)
}
