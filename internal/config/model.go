package config

import (
	"time"

	"github.com/zclconf/go-cty/cty"
)

// Model is the unified representation of all loaded manifests.
type Model struct {
	Tasks map[string]*TaskDefinition
	Hooks map[string]*HookDefinition
}

// NewModel returns an empty model with allocated maps.
func NewModel() *Model {
	return &Model{
		Tasks: make(map[string]*TaskDefinition),
		Hooks: make(map[string]*HookDefinition),
	}
}

// Merge copies every definition of other into m. Later definitions replace
// earlier ones with the same name.
func (m *Model) Merge(other *Model) {
	if other == nil {
		return
	}
	for k, v := range other.Tasks {
		m.Tasks[k] = v
	}
	for k, v := range other.Hooks {
		m.Hooks[k] = v
	}
}

// TaskDefinition describes an action type that graph nodes may reference.
type TaskDefinition struct {
	Name        string
	Description string
	// Service selects the dispatcher that executes the task. Empty means the
	// default dispatcher.
	Service string
	Tags    []string
	// Timeout bounds a single dispatch. Zero means the executor default.
	Timeout time.Duration
	Inputs  map[string]*InputDefinition
	Outputs map[string]*OutputDefinition
}

// HasTags reports whether the task carries every one of tags.
func (t *TaskDefinition) HasTags(tags ...string) bool {
	for _, want := range tags {
		found := false
		for _, have := range t.Tags {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// InputDefinition declares one input field of a task.
type InputDefinition struct {
	Name        string
	Type        cty.Type
	Description string
	Default     *cty.Value
	Optional    bool
}

// Required reports whether a node must supply the input.
func (d *InputDefinition) Required() bool {
	return !d.Optional && d.Default == nil
}

// OutputDefinition declares one output field of a task.
type OutputDefinition struct {
	Name        string
	Type        cty.Type
	Description string
}

// HookDefinition binds a webhook id that webhook triggers may reference.
type HookDefinition struct {
	ID          string
	Description string
	// Task optionally names the task the hook payload is shaped for.
	Task string
	// Secret marks hooks whose requests must carry a signature.
	Secret bool
}
