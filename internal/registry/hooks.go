package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vk/gridflow/internal/config"
)

// HookRegistry resolves webhook ids to their bindings. Unlike tasks, hooks
// may be bound and unbound while graphs compile, so access is guarded.
type HookRegistry struct {
	mu    sync.RWMutex
	hooks map[string]*config.HookDefinition
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry() *HookRegistry {
	return &HookRegistry{hooks: make(map[string]*config.HookDefinition)}
}

// Register adds a hook binding. It panics on an empty or duplicate id.
func (r *HookRegistry) Register(def *config.HookDefinition) {
	if def == nil || def.ID == "" {
		panic("registry: hook definition must have an id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.hooks[def.ID]; exists {
		panic(fmt.Sprintf("registry: hook '%s' is already registered", def.ID))
	}
	r.hooks[def.ID] = def
}

// Put adds or replaces a hook binding.
func (r *HookRegistry) Put(def *config.HookDefinition) error {
	if def == nil || def.ID == "" {
		return fmt.Errorf("registry: hook definition must have an id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[def.ID] = def
	return nil
}

// Remove unbinds a hook and reports whether it was bound.
func (r *HookRegistry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.hooks[id]
	delete(r.hooks, id)
	return ok
}

// Merge copies every hook of other into r, replacing hooks with the same id.
func (r *HookRegistry) Merge(other *HookRegistry) {
	if other == nil || other == r {
		return
	}
	other.mu.RLock()
	defer other.mu.RUnlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, def := range other.hooks {
		r.hooks[id] = def
	}
}

// Find returns the hook with the given id. A nil registry finds nothing.
func (r *HookRegistry) Find(id string) (*config.HookDefinition, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.hooks[id]
	return def, ok
}

// IDs returns the registered hook ids in sorted order.
func (r *HookRegistry) IDs() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.hooks))
	for id := range r.hooks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered hooks.
func (r *HookRegistry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks)
}
